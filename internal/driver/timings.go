package driver

import (
	"encoding/json"
	"fmt"

	"cbridge/internal/diag"
	"cbridge/internal/observ"
	"cbridge/internal/source"
)

// TimingPayload is the JSON note of a timings diagnostic.
type TimingPayload struct {
	Kind    string               `json:"kind"`
	Module  string               `json:"module,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// NewTimingPayload builds the payload of one timer.
func NewTimingPayload(kind, module string, t *observ.Timer) TimingPayload {
	report := t.Report()
	return TimingPayload{Kind: kind, Module: module, TotalMS: report.TotalMS, Phases: report.Phases}
}

// AppendTimingDiagnostic adds the timings as an informational diagnostic.
// The bag grows when it is full: timings are asked for explicitly.
func AppendTimingDiagnostic(bag *diag.Bag, payload TimingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Module != "" {
		msg = fmt.Sprintf("%s, module %s", msg, payload.Module)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Pos{},
		Notes: []diag.Note{
			{Pos: source.Pos{}, Msg: string(data)},
		},
	}

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
