package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/concurrent"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/location"
	"github.com/lintang-b-s/navigo/pkg/navigation"
)

// User is one live-navigation websocket client. The client starts a session
// with its stop list, then feeds its positions as location messages; the
// server pushes a state snapshot back for every processed sample.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub

	nav       sync.Mutex
	watcher   *location.PushWatcher
	session   *navigation.Session
	waypoints []datastructure.RouteWaypoint
	mode      pkg.TravelMode
}

func (u *User) readRequest() (*navigationClientMessage, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &navigationClientMessage{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleNavigation reads and serves one client message.
func (u *User) HandleNavigation() error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return u.writeError(http.StatusBadRequest, fmt.Sprintf("validation error: %v", vvString))
	}

	switch req.Type {
	case "start":
		return u.startNavigation(req)
	case "location":
		return u.pushLocation(req)
	default:
		u.stopNavigation()
		return u.write(envelope{"data": map[string]string{"status": "stopped"}})
	}
}

func (u *User) startNavigation(req *navigationClientMessage) error {
	if len(req.Waypoints) < 2 {
		return u.writeError(http.StatusBadRequest, "start needs at least 2 waypoints")
	}

	waypoints := planRouteRequest{Waypoints: req.Waypoints}.toWaypoints()
	mode := pkg.GetTravelMode(req.Mode)

	// the client is its own location source, the server never resolves a
	// device location for a websocket session
	route, err := u.hub.navigationService.PlanRoute(context.Background(), waypoints, false, mode)
	if err != nil {
		return u.writeError(http.StatusBadGateway, err.Error())
	}

	watcher := location.NewPushWatcher()
	session := u.hub.navigationService.NewSession(watcher)

	onStateChange := func(st datastructure.NavigationState) {
		_ = u.pushState(session, st)
	}
	// the replan runs detached: Stop waits for the onRecalculate invocation,
	// so restarting the session from inside it would deadlock
	onRecalculate := func() { go u.recalculate(session, watcher) }

	// holding nav across Start keeps stopNavigation from tearing the session
	// down between the rebind and the subscription opening
	u.nav.Lock()
	if u.session != nil {
		u.session.Stop()
	}
	u.watcher = watcher
	u.session = session
	u.waypoints = waypoints
	u.mode = mode
	started := session.Start(context.Background(), route, onStateChange, onRecalculate)
	u.nav.Unlock()

	if !started {
		u.stopNavigation()
		return u.writeError(http.StatusInternalServerError, "navigation session could not start")
	}

	return u.write(envelope{"data": map[string]interface{}{
		"status": "started",
		"route":  NewRouteResponse(route),
	}})
}

func (u *User) pushLocation(req *navigationClientMessage) error {
	if req.Location == nil {
		return u.writeError(http.StatusBadRequest, "location message carries no location")
	}

	u.nav.Lock()
	watcher := u.watcher
	u.nav.Unlock()

	if watcher == nil {
		return u.writeError(http.StatusBadRequest, "no active navigation session")
	}
	watcher.Push(req.Location.toCoordinate())
	return nil
}

func (u *User) stopNavigation() {
	u.nav.Lock()
	session := u.session
	u.session = nil
	u.watcher = nil
	u.waypoints = nil
	u.nav.Unlock()

	if session != nil {
		session.Stop()
	}
}

// recalculate replans from the client's latest position through the original
// stop list and rebinds the session to the fresh route.
func (u *User) recalculate(session *navigation.Session, watcher *location.PushWatcher) {
	u.nav.Lock()
	waypoints := u.waypoints
	mode := u.mode
	current := u.session
	u.nav.Unlock()

	if current != session {
		return // session was stopped or replaced while going off route
	}

	replanWaypoints := waypoints
	if loc, err := watcher.GetCurrentLocation(context.Background()); err == nil {
		replanWaypoints = make([]datastructure.RouteWaypoint, 0, len(waypoints)+1)
		replanWaypoints = append(replanWaypoints,
			datastructure.NewRouteWaypoint(loc, "", ""))
		replanWaypoints = append(replanWaypoints, waypoints...)
	}

	route, err := u.hub.navigationService.PlanRoute(context.Background(), replanWaypoints, false, mode)
	if err != nil {
		_ = u.writeError(http.StatusBadGateway, "recalculation failed: "+err.Error())
		return
	}

	onStateChange := func(st datastructure.NavigationState) {
		_ = u.pushState(session, st)
	}
	onRecalculate := func() { go u.recalculate(session, watcher) }

	// re-check under nav: the client may have stopped or replaced the
	// session while the provider call was in flight
	u.nav.Lock()
	if u.session != session {
		u.nav.Unlock()
		return
	}
	session.Start(context.Background(), route, onStateChange, onRecalculate)
	u.nav.Unlock()

	_ = u.write(envelope{"data": map[string]interface{}{
		"status": "recalculated",
		"route":  NewRouteResponse(route),
	}})
}

func (u *User) pushState(session *navigation.Session, st datastructure.NavigationState) error {
	resp := navigationStateResponse{
		IsNavigating:   st.IsNavigating(),
		IsOffRoute:     st.IsOffRoute(),
		CompletedCount: len(st.GetCompletedCoordinates()),
	}

	if cur := st.GetCurrentLocation(); cur != nil {
		resp.CurrentLocation = &coordinateDTO{Lat: cur.GetLat(), Lon: cur.GetLon()}
	}
	if snapped, ok := session.SnappedLocation(); ok {
		resp.SnappedLocation = &coordinateDTO{Lat: snapped.GetLat(), Lon: snapped.GetLon()}
	}
	if bearing, ok := session.Bearing(); ok {
		resp.BearingDegrees = &bearing
	}
	resp.CompletedMeters, resp.TotalMeters = session.Progress()

	return u.write(envelope{"data": resp})
}

func (u *User) writeError(status int, message string) error {
	return u.write(envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": message,
	}})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

type Hub struct {
	mu                sync.RWMutex
	seq               uint
	us                []*User
	ns                map[uint]*User
	navigationService NavigationService

	pool *concurrent.WorkerPool[int, int]
}

func NewHub(pool *concurrent.WorkerPool[int, int], navigationService NavigationService) *Hub {
	hub := &Hub{
		pool:              pool,
		ns:                make(map[uint]*User),
		us:                make([]*User, 0),
		navigationService: navigationService,
	}

	return hub
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

func (h *Hub) Remove(user *User) {
	user.stopNavigation()

	h.mu.Lock()
	if _, oki := h.ns[user.id]; !oki {
		h.mu.Unlock()
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	h.mu.Unlock()
}

func (h *Hub) RemoveAllUser() {
	for _, user := range h.us {
		h.Remove(user)
	}
}
