package main

import (
	"encoding/csv"
	"fmt"
	"io"
)

// trajectoryWriter writes one CSV row per sample: time, state vector,
// applied control, residual norm.
type trajectoryWriter struct {
	w      *csv.Writer
	nx, nu int
	wrote  bool
}

func newTrajectoryWriter(out io.Writer, nx, nu int) *trajectoryWriter {
	return &trajectoryWriter{w: csv.NewWriter(out), nx: nx, nu: nu}
}

func (t *trajectoryWriter) writeHeader() error {
	header := make([]string, 0, 2+t.nx+t.nu)
	header = append(header, "time")
	for i := 0; i < t.nx; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < t.nu; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	header = append(header, "residual_norm")
	return t.w.Write(header)
}

func (t *trajectoryWriter) writeSample(time float64, x, u []float64, residualNorm float64) error {
	if !t.wrote {
		if err := t.writeHeader(); err != nil {
			return err
		}
		t.wrote = true
	}
	row := make([]string, 0, 2+len(x)+len(u))
	row = append(row, fmt.Sprintf("%.6f", time))
	for _, v := range x {
		row = append(row, fmt.Sprintf("%.6g", v))
	}
	for _, v := range u {
		row = append(row, fmt.Sprintf("%.6g", v))
	}
	row = append(row, fmt.Sprintf("%.6e", residualNorm))
	return t.w.Write(row)
}

func (t *trajectoryWriter) flush() error {
	t.w.Flush()
	return t.w.Error()
}
