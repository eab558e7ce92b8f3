package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/render"
)

type jsonFrame struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	FontFamily string    `json:"fontFamily,omitempty"`
	Stats      jsonStats `json:"stats"`
	Commands   []any     `json:"commands"`
}

type jsonStats struct {
	Nodes  int `json:"nodes"`
	Edges  int `json:"edges"`
	Labels int `json:"labels"`
}

type jsonStroke struct {
	Kind   string  `json:"kind"`
	ID     string  `json:"id,omitempty"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	CX     float64 `json:"cx,omitempty"`
	CY     float64 `json:"cy,omitempty"`
	Curved bool    `json:"curved,omitempty"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Alpha  float64 `json:"alpha"`
}

type jsonArrowhead struct {
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

type jsonRing struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Color string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

type jsonCircle struct {
	Kind        string  `json:"kind"`
	ID          string  `json:"id,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	R           float64 `json:"r"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Alpha       float64 `json:"alpha"`
}

type jsonImage struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Data  []byte  `json:"data"`
	Alpha float64 `json:"alpha"`
}

type jsonPill struct {
	Kind   string  `json:"kind"`
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Corner float64 `json:"corner"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke,omitempty"`
	Alpha  float64 `json:"alpha"`
}

type jsonText struct {
	Kind    string  `json:"kind"`
	ID      string  `json:"id,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Alpha   float64 `json:"alpha"`
}

// JSON serializes a frame as indented JSON. Every command carries a
// kind discriminator so external viewers can replay the list without
// knowing anything about graphs or layouts.
func JSON(f render.Frame) ([]byte, error) {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnSinkStart(context.Background(), "json")

	out := jsonFrame{
		Width:      f.Width,
		Height:     f.Height,
		Background: f.Background,
		FontFamily: f.FontFamily,
		Stats: jsonStats{
			Nodes:  f.Stats.Nodes,
			Edges:  f.Stats.Edges,
			Labels: f.Stats.Labels,
		},
		Commands: make([]any, 0, len(f.Commands)),
	}
	for _, cmd := range f.Commands {
		out.Commands = append(out.Commands, jsonCommand(cmd))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		err = errors.Wrap(errors.ErrCodeRender, err, "marshal frame")
		hooks.OnSinkComplete(context.Background(), "json", 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnSinkComplete(context.Background(), "json", len(data), time.Since(start), nil)
	return data, nil
}

func jsonCommand(cmd render.Command) any {
	switch c := cmd.(type) {
	case render.Stroke:
		return jsonStroke{
			Kind:   c.Kind(),
			ID:     c.EdgeKey,
			X1:     c.X1,
			Y1:     c.Y1,
			X2:     c.X2,
			Y2:     c.Y2,
			CX:     c.CX,
			CY:     c.CY,
			Curved: c.Curved,
			Color:  c.Color,
			Width:  c.Width,
			Alpha:  c.Alpha,
		}
	case render.Arrowhead:
		return jsonArrowhead{
			Kind:  c.Kind(),
			X:     c.X,
			Y:     c.Y,
			Angle: c.Angle,
			Size:  c.Size,
			Color: c.Color,
			Alpha: c.Alpha,
		}
	case render.Ring:
		return jsonRing{
			Kind:  c.Kind(),
			ID:    c.NodeID,
			X:     c.X,
			Y:     c.Y,
			R:     c.R,
			Color: c.Color,
			Alpha: c.Alpha,
		}
	case render.Circle:
		return jsonCircle{
			Kind:        c.Kind(),
			ID:          c.NodeID,
			X:           c.X,
			Y:           c.Y,
			R:           c.R,
			Fill:        c.Fill,
			Stroke:      c.Stroke,
			StrokeWidth: c.StrokeWidth,
			Alpha:       c.Alpha,
		}
	case render.Image:
		return jsonImage{
			Kind:  c.Kind(),
			ID:    c.NodeID,
			X:     c.X,
			Y:     c.Y,
			W:     c.W,
			H:     c.H,
			Data:  c.Data,
			Alpha: c.Alpha,
		}
	case render.Pill:
		return jsonPill{
			Kind:   c.Kind(),
			ID:     c.NodeID,
			X:      c.X,
			Y:      c.Y,
			W:      c.W,
			H:      c.H,
			Corner: c.Corner,
			Fill:   c.Fill,
			Stroke: c.Stroke,
			Alpha:  c.Alpha,
		}
	case render.Text:
		return jsonText{
			Kind:    c.Kind(),
			ID:      c.ID,
			X:       c.X,
			Y:       c.Y,
			Content: c.Content,
			Size:    c.Size,
			Color:   c.Color,
			Alpha:   c.Alpha,
		}
	default:
		return map[string]string{"kind": cmd.Kind()}
	}
}
