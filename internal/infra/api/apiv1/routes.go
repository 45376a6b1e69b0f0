package apiv1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations in api/openapi.yaml.
type ServerInterface interface {
	// (POST /api/generate-workflow)
	GenerateWorkflow(w http.ResponseWriter, r *http.Request)
	// (POST /api/analyze-workflow)
	AnalyzeWorkflow(w http.ResponseWriter, r *http.Request)
	// (POST /api/optimize-workflow)
	OptimizeWorkflow(w http.ResponseWriter, r *http.Request)
	// (POST /api/start-analysis)
	StartAnalysis(w http.ResponseWriter, r *http.Request)
	// (GET /api/check-status)
	CheckStatus(w http.ResponseWriter, r *http.Request, params CheckStatusParams)
}

// ServerInterfaceWrapper binds request parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) CheckStatus(w http.ResponseWriter, r *http.Request) {
	var params CheckStatusParams
	if err := runtime.BindQueryParameter("form", true, false, "jobId", r.URL.Query(), &params.JobID); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "jobId", Err: err})
		return
	}
	siw.Handler.CheckStatus(w, r, params)
}

// InvalidParamFormatError reports a query parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// RegisterAPIV1 mounts every operation on r at its absolute path.
func RegisterAPIV1(r chi.Router, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		},
	}
	r.Post("/api/generate-workflow", si.GenerateWorkflow)
	r.Post("/api/analyze-workflow", si.AnalyzeWorkflow)
	r.Post("/api/optimize-workflow", si.OptimizeWorkflow)
	r.Post("/api/start-analysis", si.StartAnalysis)
	r.Get("/api/check-status", wrapper.CheckStatus)
}
