package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sfcc/internal/diag"
)

// Reporter logs every diagnostic as one structured entry. Errors are logged
// at error level, warnings at warn, everything else at info. It is safe for
// concurrent use.
type Reporter struct {
	Logger *zap.Logger
}

func (r Reporter) Report(d diag.Diagnostic) {
	if r.Logger == nil {
		return
	}
	lvl := zapcore.InfoLevel
	switch d.Severity {
	case diag.SevError:
		lvl = zapcore.ErrorLevel
	case diag.SevWarning:
		lvl = zapcore.WarnLevel
	}
	ce := r.Logger.Check(lvl, d.Message)
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("code", d.Code.ID()),
		zap.String("severity", d.Severity.String()),
	}
	if d.File != "" {
		fields = append(fields, zap.String("file", d.File))
	}
	if d.Pos.Line > 0 {
		fields = append(fields, zap.Uint32("line", d.Pos.Line), zap.Uint32("col", d.Pos.Col))
	}
	for _, n := range d.Notes {
		fields = append(fields, zap.String("note", n.Msg))
	}
	ce.Write(fields...)
}
