package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/flowkernel/engine"
	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/logger"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/plan"
	"github.com/kbukum/flowkernel/validation"
)

// PipelineCatalog resolves and lists named pipelines.
type PipelineCatalog interface {
	plan.PipelineLoader
	Names() []string
}

// TableRequest is the body of PUT /v1/tables/:name.
type TableRequest[T numeric.Number] struct {
	Values []T `json:"values" validate:"required"`
}

// TableResponse describes one table.
type TableResponse[T numeric.Number] struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
	Values []T    `json:"values,omitempty"`
}

// RunRequest is the body of POST /v1/run and POST /v1/compare. Exactly one
// of Pipeline (a catalog name) and Stages must be given.
type RunRequest struct {
	Pipeline string              `json:"pipeline,omitempty" validate:"omitempty,max=128"`
	Strategy string              `json:"strategy,omitempty" validate:"omitempty,oneof=pull push"`
	Limit    int                 `json:"limit,omitempty" validate:"gte=0"`
	Stages   []plan.OperatorSpec `json:"stages,omitempty"`
}

// RunResponse is the result of one execution.
type RunResponse[T numeric.Number] struct {
	ExecutionID string        `json:"execution_id"`
	Pipeline    string        `json:"pipeline,omitempty"`
	Strategy    plan.Strategy `json:"strategy"`
	Values      []T           `json:"values"`
}

// CompareResponse holds the output of both strategies.
type CompareResponse[T numeric.Number] struct {
	Pipeline string `json:"pipeline,omitempty"`
	Equal    bool   `json:"equal"`
	Pull     []T    `json:"pull"`
	Push     []T    `json:"push"`
}

// API serves table registration and pipeline execution over HTTP.
type API[T numeric.Number] struct {
	engine  *engine.Engine[T]
	catalog PipelineCatalog
	log     *logger.Logger
}

// NewAPI creates an API over eng. catalog may be nil, in which case runs
// must carry their stages inline.
func NewAPI[T numeric.Number](eng *engine.Engine[T], catalog PipelineCatalog, log *logger.Logger) *API[T] {
	return &API[T]{engine: eng, catalog: catalog, log: log.WithComponent("api")}
}

// Register mounts the /v1 routes on r.
func (a *API[T]) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.GET("/tables", a.listTables)
	v1.GET("/tables/:name", a.getTable)
	v1.PUT("/tables/:name", a.putTable)
	v1.GET("/pipelines", a.listPipelines)
	v1.POST("/run", a.run)
	v1.POST("/compare", a.compare)
}

// TablesHealth reports the table store as a health component.
func (a *API[T]) TablesHealth() observability.HealthChecker {
	return observability.HealthCheckerFunc(func(context.Context) observability.Health {
		return observability.Health{
			Name:    "tables",
			Status:  observability.HealthStatusUp,
			Details: map[string]any{"count": a.engine.Store().Len()},
		}
	})
}

func (a *API[T]) listTables(c *gin.Context) {
	RespondOK(c, gin.H{"tables": a.engine.Store().Names()})
}

func (a *API[T]) getTable(c *gin.Context) {
	snap, err := a.engine.Store().Lookup(c.Param("name"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, TableResponse[T]{Name: snap.Name(), Length: snap.Len(), Values: snap.Values()})
}

func (a *API[T]) putTable(c *gin.Context) {
	var req TableRequest[T]
	if !bind(c, &req) {
		return
	}
	name := c.Param("name")
	if err := a.engine.Store().Register(name, req.Values); err != nil {
		RespondWithError(c, err)
		return
	}
	a.log.WithContext(c.Request.Context()).Info("table registered", logger.Fields(
		logger.FieldTable, name,
		logger.FieldItems, len(req.Values),
	))
	RespondOK(c, TableResponse[T]{Name: name, Length: len(req.Values)})
}

func (a *API[T]) listPipelines(c *gin.Context) {
	names := []string{}
	if a.catalog != nil {
		names = append(names, a.catalog.Names()...)
	}
	RespondOK(c, gin.H{"pipelines": names})
}

func (a *API[T]) run(c *gin.Context) {
	var req RunRequest
	if !bind(c, &req) {
		return
	}
	p, err := a.resolve(req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	x, err := a.engine.Build(p, plan.Strategy(req.Strategy))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	id := uuid.NewString()
	values, err := x.Execute(c.Request.Context(), engine.RunOptions{Limit: req.Limit, ExecutionID: id})
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, RunResponse[T]{ExecutionID: id, Pipeline: p.Name, Strategy: x.Strategy(), Values: values})
}

func (a *API[T]) compare(c *gin.Context) {
	var req RunRequest
	if !bind(c, &req) {
		return
	}
	p, err := a.resolve(req)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	cmp, err := a.engine.Compare(c.Request.Context(), p)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, CompareResponse[T]{Pipeline: p.Name, Equal: cmp.Equal, Pull: cmp.Pull, Push: cmp.Push})
}

// resolve returns the pipeline a request refers to.
func (a *API[T]) resolve(req RunRequest) (plan.Pipeline, error) {
	switch {
	case req.Pipeline != "" && len(req.Stages) > 0:
		return plan.Pipeline{}, apperrors.InvalidInput("pipeline", "give either a pipeline name or stages, not both")
	case req.Pipeline != "":
		if a.catalog == nil {
			return plan.Pipeline{}, apperrors.NotFound("pipeline", req.Pipeline)
		}
		p, err := a.catalog.Load(req.Pipeline)
		if err != nil {
			return plan.Pipeline{}, err
		}
		return *p, nil
	default:
		return plan.Pipeline{Stages: req.Stages}, nil
	}
}

// bind decodes the JSON body into req and validates it. On failure it
// writes the error response and returns false.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput,
				"Request body too large.").WithStatus(http.StatusRequestEntityTooLarge))
			return false
		}
		RespondWithError(c, apperrors.InvalidInput("body", err.Error()).WithCause(err))
		return false
	}
	if err := validation.Validate(req); err != nil {
		RespondWithError(c, err)
		return false
	}
	return true
}
