package access

import "biovault/internal/platform/logger"

// Toaster recibe las confirmaciones efímeras que el engine emite junto a
// cada mutación. La severidad refleja el resultado real de la operación;
// el render es problema del cliente.
type Toaster interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// NopToaster descarta los toasts (útil en tests).
type NopToaster struct{}

func (NopToaster) Success(string) {}
func (NopToaster) Info(string)    {}
func (NopToaster) Error(string)   {}

// LogToaster manda los toasts al logger estructurado del servicio.
type LogToaster struct {
	log logger.Logger
}

func NewLogToaster(log logger.Logger) *LogToaster {
	return &LogToaster{log: log}
}

func (t *LogToaster) Success(msg string) { t.emit("success", msg) }
func (t *LogToaster) Info(msg string)    { t.emit("info", msg) }
func (t *LogToaster) Error(msg string)   { t.emit("error", msg) }

func (t *LogToaster) emit(level, msg string) {
	if t == nil || t.log == nil {
		return
	}
	t.log.Info("toast", map[string]any{
		"severity": level,
		"message":  msg,
	})
}
