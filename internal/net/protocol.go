package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"VectorBoard/internal/editor"
	"VectorBoard/internal/export"
	"VectorBoard/internal/state"
)

type kindParams struct {
	Kind string `json:"kind"`
}

type pointerParams struct {
	ID string  `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type valueParams struct {
	Value string `json:"value"`
}

type viewportParams struct {
	Scale float64 `json:"scale"`
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
}

type formatParams struct {
	Format string `json:"format"`
}

// StatePayload is what every editing request answers with.
type StatePayload struct {
	Shapes   []state.Shape      `json:"shapes"`
	Selected string             `json:"selected,omitempty"`
	Dragging bool               `json:"dragging"`
	History  editor.HistoryInfo `json:"history"`
	Viewport state.Viewport     `json:"viewport"`
	Canvas   export.Canvas      `json:"canvas"`
	Policy   editor.UndoPolicy  `json:"policy"`
}

type pickPayload struct {
	ID    string       `json:"id,omitempty"`
	Shape *state.Shape `json:"shape,omitempty"`
}

type exportPayload struct {
	Format   export.Format `json:"format"`
	Filename string        `json:"filename"`
	MIME     string        `json:"mime"`
	Data     []byte        `json:"data"`
}

func (s *Session) statePayload() StatePayload {
	shapes := s.ed.Shapes()
	if shapes == nil {
		shapes = []state.Shape{}
	}
	sess := s.ed.Session()
	return StatePayload{
		Shapes:   shapes,
		Selected: sess.Selected,
		Dragging: sess.Dragging(),
		History:  s.ed.History(),
		Viewport: s.ed.Viewport(),
		Canvas:   s.ed.Canvas(),
		Policy:   s.ed.Policy(),
	}
}

func decodeParams(frame *wsFrame, v any) error {
	if len(frame.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(frame.Params, v); err != nil {
		return &wsError{Code: codeBadRequest, Message: fmt.Sprintf("invalid params for %s: %v", frame.Method, err)}
	}
	return nil
}

// handle runs one request against the session's editor. Requests are
// handled in arrival order on the read loop; only export answers later.
func (s *Session) handle(frame *wsFrame) {
	err := s.dispatch(frame)
	if err == nil {
		s.server.metrics.RecordRequest(frame.Method, nil)
		return
	}
	var we *wsError
	if !errors.As(err, &we) {
		we = errorFrame(err)
	}
	method := frame.Method
	if we.Code == codeUnknownMethod {
		method = "unknown"
	}
	s.server.metrics.RecordRequest(method, err)
	s.logger.Debug("request failed", "method", frame.Method, "code", we.Code, "error", we.Message)
	s.sendError(frame.ID, we.Code, we.Message)
}

func errorFrame(err error) *wsError {
	switch {
	case errors.Is(err, state.ErrUnsupportedKind):
		return &wsError{Code: codeInvalidKind, Message: err.Error()}
	case errors.Is(err, state.ErrShapeNotFound):
		return &wsError{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, export.ErrUnsupportedFormat):
		return &wsError{Code: codeBadRequest, Message: err.Error()}
	}
	return &wsError{Code: codeBadRequest, Message: err.Error()}
}

func (s *Session) dispatch(frame *wsFrame) error {
	ed := s.ed
	switch frame.Method {
	case "state":
	case "addShape":
		var p kindParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		if _, err := ed.AddShape(p.Kind); err != nil {
			return err
		}
	case "pointerDown":
		var p pointerParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		pt := state.Point{X: p.X, Y: p.Y}
		if p.ID == "" {
			if _, err := ed.PointerDown(pt); err != nil {
				return err
			}
		} else if err := ed.SelectOrBeginDrag(p.ID, pt); err != nil {
			return err
		}
	case "pointerMove":
		var p pointerParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		ed.ContinueDrag(state.Point{X: p.X, Y: p.Y})
	case "pointerUp":
		ed.EndDrag()
	case "pick":
		var p pointerParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		var out pickPayload
		if hit, ok := ed.PickAt(state.Point{X: p.X, Y: p.Y}); ok {
			out = pickPayload{ID: hit.ID, Shape: &hit}
		}
		return s.sendResponse(frame.ID, out)
	case "setStroke", "setFill", "setStrokeWidth":
		var p valueParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		switch frame.Method {
		case "setStroke":
			ed.SetStroke(p.Value)
		case "setFill":
			ed.SetFill(p.Value)
		default:
			ed.SetStrokeWidth(p.Value)
		}
	case "deleteSelected":
		ed.DeleteSelected()
	case "undo":
		ed.Undo()
	case "redo":
		ed.Redo()
	case "viewport":
		var p viewportParams
		if err := decodeParams(frame, &p); err != nil {
			return err
		}
		ed.SetViewport(state.Viewport{Scale: p.Scale, PanX: p.PanX, PanY: p.PanY})
	case "export":
		return s.handleExport(frame)
	default:
		return &wsError{Code: codeUnknownMethod, Message: fmt.Sprintf("unknown method %q", frame.Method)}
	}
	return s.sendResponse(frame.ID, s.statePayload())
}

// handleExport snapshots the canvas now and answers once encoding is done.
func (s *Session) handleExport(frame *wsFrame) error {
	var p formatParams
	if err := decodeParams(frame, &p); err != nil {
		return err
	}
	format, err := export.ParseFormat(p.Format)
	if err != nil {
		return err
	}
	results := s.exporter.ExportAsync(s.ctx, s.ed.Snapshot(), format)
	go func() {
		res := <-results
		if res.Err != nil {
			s.sendError(frame.ID, codeExportFailed, res.Err.Error())
			return
		}
		a := res.Artifact
		err := s.sendResponse(frame.ID, exportPayload{Format: a.Format, Filename: a.Filename, MIME: a.MIME, Data: a.Data})
		if errors.Is(err, errFrameTooLarge) {
			s.sendError(frame.ID, codeExportFailed, fmt.Sprintf("%s export of %d bytes is too large to send: %v", a.Format, len(a.Data), err))
		}
	}()
	return nil
}
