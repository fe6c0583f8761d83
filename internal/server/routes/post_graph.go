package routes

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"time"

	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/pkg/common"
	"github.com/cozyai/kitchenette/backend/pkg/graph"
	"github.com/cozyai/kitchenette/backend/pkg/layout"
	"github.com/cozyai/kitchenette/backend/pkg/logger"
	"github.com/cozyai/kitchenette/backend/pkg/render"
	"github.com/cozyai/kitchenette/backend/pkg/scenario"

	"github.com/labstack/echo/v4"
)

const (
	defaultLayoutFrames = 300
	defaultStreamFrames = 60

	graph400 = "Scenario or nodes array is required"
)

// ParseHubsHandler parses hub categories from the "HUB_NAME:\n- Entity"
// format. When nothing parses the raw text is answered instead.
func ParseHubsHandler(c echo.Context) error {
	type parseHubsBody struct {
		Text string `json:"text" validate:"required"`
	}

	type parseHubsResponse struct {
		Hubs []graph.Hub `json:"hubs"`
		Raw  string      `json:"raw,omitempty"`
	}

	data := new(parseHubsBody)
	if msg := sutil.BindAndValidate(c, data, sutil.Messages{"text": text400}, text400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	hubs, ok := graph.ParseHubs(data.Text)
	if !ok {
		return c.JSON(http.StatusOK, parseHubsResponse{Hubs: []graph.Hub{}, Raw: data.Text})
	}
	return c.JSON(http.StatusOK, parseHubsResponse{Hubs: hubs})
}

type layoutBody struct {
	Scenario  string                `json:"scenario" validate:"required_without=Nodes"`
	Nodes     []common.Entity       `json:"nodes" validate:"omitempty,max=500,dive"`
	Edges     []common.Relationship `json:"edges" validate:"omitempty,max=2000,dive"`
	Seed      uint64                `json:"seed"`
	Hidden    []string              `json:"hidden"`
	Locked    []string              `json:"locked"`
	Width     float64               `json:"width" validate:"min=0,max=10000"`
	Height    float64               `json:"height" validate:"min=0,max=10000"`
	Repulsion float64               `json:"repulsion"`
	// UsePositions starts nodes at their given position.
	UsePositions bool `json:"usePositions"`
}

var layoutMessages = sutil.Messages{
	"scenario": graph400,
	"nodes":    "Nodes need an id and a type, at most 500 nodes are allowed",
	"edges":    "Edges need from and to, at most 2000 edges are allowed",
	"width":    "width must be between 0 and 10000",
	"height":   "height must be between 0 and 10000",
	"frames":   "frames must be between 0 and 5000",
	"format":   "format must be json or svg",
}

// simulation builds the simulation the body describes. A nil simulation
// means the error response was written already; err is the write result.
func (b *layoutBody) simulation(c echo.Context) (*layout.Simulation, error) {
	sc := &common.Scenario{Key: "inline", Entities: b.Nodes, Relationships: b.Edges}
	if len(b.Nodes) == 0 {
		if b.Scenario == "" {
			return nil, sutil.BadRequest(c, graph400)
		}
		var err error
		sc, err = scenario.Get(b.Scenario)
		if errors.Is(err, scenario.ErrNotFound) {
			return nil, sutil.NotFound(c, scenario404)
		}
		if err != nil {
			return nil, sutil.UpstreamError(c, "Failed to load scenario", err)
		}
	}

	sim := layout.New(sc, layout.Options{
		Width:                b.Width,
		Height:               b.Height,
		Repulsion:            b.Repulsion,
		Seed:                 b.Seed,
		UseScenarioPositions: b.UsePositions,
	})
	for _, t := range b.Hidden {
		sim.SetVisibility(t, false)
	}
	for _, id := range b.Locked {
		sim.LockNode(id, true)
	}
	return sim, nil
}

// GraphLayoutHandler runs a layout for a number of frames and answers the
// final frame as JSON or SVG.
func GraphLayoutHandler(c echo.Context) error {
	type graphLayoutBody struct {
		layoutBody
		Frames *int   `json:"frames" validate:"omitempty,min=0,max=5000"`
		Format string `json:"format" validate:"omitempty,oneof=json svg"`
	}

	data := new(graphLayoutBody)
	if msg := sutil.BindAndValidate(c, data, layoutMessages, graph400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	sim, err := data.simulation(c)
	if sim == nil {
		return err
	}

	frames := defaultLayoutFrames
	if data.Frames != nil {
		frames = *data.Frames
	}
	sim.Run(frames)
	frame := sim.Frame()

	if data.Format == "svg" {
		c.Response().Header().Set(echo.HeaderContentType, "image/svg+xml")
		c.Response().WriteHeader(http.StatusOK)
		return render.WriteGraphSVG(c.Response(), frame)
	}
	return c.JSON(http.StatusOK, frame)
}

// streamCommand is an interaction replayed on a running layout once the
// client has received AtFrame frames. AtFrame 0 applies before the first frame.
type streamCommand struct {
	AtFrame int     `json:"atFrame" validate:"min=0"`
	Action  string  `json:"action" validate:"required,oneof=hide show toggle hideAll showAll toggleAll lock unlock toggleLock drag repulsion"`
	Type    string  `json:"type"`
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Value   float64 `json:"value"`
}

func (sc streamCommand) command() layout.Command {
	return func(s *layout.Simulation) {
		switch sc.Action {
		case "hide":
			s.SetVisibility(sc.Type, false)
		case "show":
			s.SetVisibility(sc.Type, true)
		case "toggle":
			s.ToggleVisibility(sc.Type)
		case "hideAll":
			s.SetAllVisible(false)
		case "showAll":
			s.SetAllVisible(true)
		case "toggleAll":
			s.ToggleAll()
		case "lock":
			s.LockNode(sc.ID, true)
		case "unlock":
			s.LockNode(sc.ID, false)
		case "toggleLock":
			s.ToggleLock(sc.ID)
		case "drag":
			s.DragNode(sc.ID, layout.Vec{X: sc.X, Y: sc.Y})
		case "repulsion":
			s.SetRepulsion(sc.Value)
		}
	}
}

// GraphStreamHandler streams layout frames as newline delimited JSON until
// maxFrames frames were sent or the client goes away. Commands are sent to
// the runner as the stream reaches their frame.
func GraphStreamHandler(c echo.Context) error {
	type graphStreamBody struct {
		layoutBody
		MaxFrames     int             `json:"maxFrames" validate:"min=0,max=2000"`
		StepsPerFrame int             `json:"stepsPerFrame" validate:"min=0,max=100"`
		IntervalMs    int             `json:"intervalMs" validate:"min=0,max=1000"`
		Commands      []streamCommand `json:"commands" validate:"omitempty,max=200,dive"`
	}

	data := new(graphStreamBody)
	messages := sutil.Messages{
		"maxFrames":     "maxFrames must be between 0 and 2000",
		"stepsPerFrame": "stepsPerFrame must be between 0 and 100",
		"intervalMs":    "intervalMs must be between 0 and 1000",
		"commands":      "Commands need a known action, at most 200 commands are allowed",
	}
	maps.Copy(messages, layoutMessages)
	if msg := sutil.BindAndValidate(c, data, messages, graph400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	sim, err := data.simulation(c)
	if sim == nil {
		return err
	}

	pending := make(map[int][]layout.Command)
	for _, cmd := range data.Commands {
		if cmd.AtFrame == 0 {
			cmd.command()(sim)
			continue
		}
		pending[cmd.AtFrame] = append(pending[cmd.AtFrame], cmd.command())
	}

	maxFrames := data.MaxFrames
	if maxFrames == 0 {
		maxFrames = defaultStreamFrames
	}
	runner := layout.NewRunner(sim, layout.RunnerOptions{
		StepsPerFrame: data.StepsPerFrame,
		MaxFrames:     maxFrames,
		Interval:      time.Duration(data.IntervalMs) * time.Millisecond,
	})

	ctx := c.Request().Context()
	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Debug("[Layout] Stream stopped", "err", err)
		}
	}()

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Response())
	sent := 0
	for frame := range runner.Frames() {
		if err := enc.Encode(frame); err != nil {
			// the runner stops with the request context
			return err
		}
		c.Response().Flush()
		sent++

		for _, cmd := range pending[sent] {
			if err := runner.Do(ctx, cmd); err != nil {
				logger.Debug("[Layout] Command dropped", "frame", sent, "err", err)
			}
		}
	}
	return nil
}
