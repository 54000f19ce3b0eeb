package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/navigo/pkg"
	helper "github.com/lintang-b-s/navigo/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type navigationAPI struct {
	navigationService NavigationService
	log               *zap.Logger
}

func New(navigationService NavigationService, log *zap.Logger) *navigationAPI {
	return &navigationAPI{
		navigationService: navigationService,
		log:               log,
	}
}

func (api *navigationAPI) Routes(group *helper.RouteGroup) {
	group.POST("/navigation/routes", api.planRoute)
	group.POST("/navigation/route-info", api.routeInfo)
	group.POST("/navigation/route-info/matrix", api.routeInfoMatrix)
}

func (api *navigationAPI) validateRequest(w http.ResponseWriter, r *http.Request,
	request interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

func (api *navigationAPI) planRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request planRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !api.validateRequest(w, r, request) {
		return
	}

	route, err := api.navigationService.PlanRoute(r.Context(), request.toWaypoints(),
		request.includeUserLocation(), pkg.GetTravelMode(request.Mode))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(route)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *navigationAPI) routeInfo(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request routeInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !api.validateRequest(w, r, request) {
		return
	}

	info, err := api.navigationService.RouteInfo(r.Context(), request.Start.toCoordinate(),
		request.End.toCoordinate(), pkg.GetTravelMode(request.Mode))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteInfoResponse(info)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *navigationAPI) routeInfoMatrix(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request routeInfoMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !api.validateRequest(w, r, request) {
		return
	}

	matrix, err := api.navigationService.RouteInfoMatrix(r.Context(),
		toCoordinates(request.Origins), toCoordinates(request.Destinations),
		pkg.GetTravelMode(request.Mode))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteInfoMatrixResponse(matrix)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
