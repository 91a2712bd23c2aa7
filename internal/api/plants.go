package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/markusressel/pidctl/internal/util"
	"github.com/qdm12/reprint"
)

type PlantStatus struct {
	Id     string                    `json:"id"`
	Input  float64                   `json:"input"`
	Values map[string]float64        `json:"values"`
	Config configuration.PlantConfig `json:"config"`
}

func registerPlantEndpoints(rest *echo.Echo) {
	group := rest.Group("/plant")

	group.GET("/", getPlants)
	group.GET("/:"+urlParamId+"/", getPlant)
}

func getPlants(c echo.Context) error {
	items := plants.PlantMap.Items()
	data := []PlantStatus{}
	for _, id := range util.SortedKeys(items) {
		status, err := createPlantStatus(items[id])
		if err != nil {
			return returnError(c, err)
		}
		data = append(data, status)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getPlant(c echo.Context) error {
	id := c.Param(urlParamId)
	plant, exists := plants.PlantMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	status, err := createPlantStatus(plant)
	if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, status, indentationChar)
}

func createPlantStatus(plant plants.Plant) (PlantStatus, error) {
	values := map[string]float64{}
	for _, channel := range plant.Channels() {
		value, err := plant.GetValue(channel)
		if err != nil {
			return PlantStatus{}, err
		}
		values[channel] = value
	}

	// the config shares its model pointers with the running plant
	config := reprint.This(plant.GetConfig()).(configuration.PlantConfig)

	return PlantStatus{
		Id:     plant.GetId(),
		Input:  plant.GetInput(),
		Values: values,
		Config: config,
	}, nil
}
