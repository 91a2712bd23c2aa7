package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pidctl/internal/loops"
	"github.com/markusressel/pidctl/internal/util"
)

func registerLoopEndpoints(rest *echo.Echo) {
	group := rest.Group("/loop")

	group.GET("/", getLoops)
	group.GET("/:"+urlParamId+"/", getLoop)
	group.GET("/:"+urlParamId+"/trace/", getLoopTrace)
	group.PUT("/:"+urlParamId+"/gains/", setLoopGains)
}

// returns a snapshot of all currently running loops, ordered by id
func getLoops(c echo.Context) error {
	items := loops.LoopMap.Items()
	data := []loops.Snapshot{}
	for _, id := range util.SortedKeys(items) {
		data = append(data, items[id].Snapshot())
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getLoop(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := loops.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, loop.Snapshot(), indentationChar)
}

func getLoopTrace(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := loops.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	trace := loop.Trace()
	if trace == nil {
		trace = []loops.Sample{}
	}
	return c.JSONPretty(http.StatusOK, trace, indentationChar)
}

// replaces the gains of a loop, the controller keeps its state
func setLoopGains(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := loops.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	var gains loops.Gains
	if err := c.Bind(&gains); err != nil {
		return returnBadRequest(c, errors.New("invalid gains: "+err.Error()))
	}
	if err := loop.SetGains(gains); err != nil {
		return returnBadRequest(c, err)
	}

	return c.JSONPretty(http.StatusOK, loop.GetGains(), indentationChar)
}
