package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/findstorm/internal/input"
)

func TestResultStatusString(t *testing.T) {
	for status, want := range map[ResultStatus]string{
		StatusOK:         "ok",
		StatusNoOp:       "no-op",
		StatusError:      "error",
		StatusCancelled:  "cancelled",
		ResultStatus(42): "unknown",
	} {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	if !Success().IsOK() || Success().IsError() {
		t.Error("Success should be OK")
	}
	if r := NoOpWithMessage("at newest session"); r.Status != StatusNoOp || r.Message != "at newest session" {
		t.Errorf("NoOpWithMessage = %+v", r)
	}
	err := errors.New("bad pattern")
	if r := Error(err); !r.IsError() || !errors.Is(r.Error, err) {
		t.Errorf("Error = %+v", r)
	}
	if r := Errorf("step %d", 3); r.Error == nil || r.Error.Error() != "step 3" {
		t.Errorf("Errorf = %+v", r)
	}
	if r := CancelledWithMessage("find cancelled"); r.Status != StatusCancelled {
		t.Errorf("CancelledWithMessage = %+v", r)
	}
}

func TestResultData(t *testing.T) {
	base := Success().WithData("matches", 3)
	r := base.WithData("query", "foo").WithData("active", true).WithData("index", float64(2))

	if r.GetDataInt("matches") != 3 || r.GetDataInt("index") != 2 {
		t.Errorf("ints = %d, %d", r.GetDataInt("matches"), r.GetDataInt("index"))
	}
	if r.GetDataString("query") != "foo" {
		t.Errorf("query = %q", r.GetDataString("query"))
	}
	if !r.GetDataBool("active") {
		t.Error("active should be true")
	}
	if q, ok := DataAs[string](r, "query"); !ok || q != "foo" {
		t.Errorf("DataAs = %q, %t", q, ok)
	}
	if _, ok := DataAs[int](r, "query"); ok {
		t.Error("DataAs must reject the wrong type")
	}
	if _, ok := base.GetData("query"); ok {
		t.Error("WithData must not modify the original result")
	}
	if r.GetDataString("missing") != "" || r.GetDataInt("query") != 0 {
		t.Error("missing or mistyped keys should yield zero values")
	}
}

func TestActionTable(t *testing.T) {
	tbl := NewActionTable("find")
	tbl.Register("find.type", func(_ context.Context, action input.Action) Result {
		return SuccessWithMessage(action.Text)
	})
	tbl.Register("find.end", func(context.Context, input.Action) Result { return NoOp() })

	if tbl.Namespace() != "find" {
		t.Errorf("Namespace() = %q", tbl.Namespace())
	}
	if !tbl.CanHandle("find.type") || tbl.CanHandle("find.other") {
		t.Error("CanHandle mismatch")
	}
	if got := tbl.Names(); len(got) != 2 || got[0] != "find.end" {
		t.Errorf("Names() = %v", got)
	}

	r := tbl.HandleAction(context.Background(), input.NewAction("find.type").WithText("hi"))
	if r.Message != "hi" {
		t.Errorf("result = %+v", r)
	}
	if r := tbl.HandleAction(context.Background(), input.NewAction("find.other")); !r.IsError() {
		t.Errorf("unknown action should fail, got %+v", r)
	}
}

func TestFunc(t *testing.T) {
	var h Handler = Func(func(context.Context, input.Action) Result { return NoOp() })
	if r := h.Handle(context.Background(), input.NewAction("x")); r.Status != StatusNoOp {
		t.Errorf("Func result = %+v", r)
	}
	var nilFunc Func
	if r := nilFunc.Handle(context.Background(), input.NewAction("x")); !r.IsError() {
		t.Error("nil func should produce an error result")
	}
}

func TestBaseKeyHandlerAllowsDefaults(t *testing.T) {
	var h BaseKeyHandler
	ctx := context.Background()
	if !h.OnText(ctx, "x") || !h.OnMove(ctx) || !h.OnDelete(ctx, DeleteLine) ||
		!h.OnYank(ctx) || !h.OnKill(ctx) || !h.OnCancel(ctx) {
		t.Error("BaseKeyHandler should never veto")
	}
	if DeleteWordLeft.String() != "deleteWordLeft" {
		t.Errorf("DeleteWordLeft.String() = %q", DeleteWordLeft.String())
	}
}
