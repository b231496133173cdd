package film

import (
	"context"
	"errors"
	"maps"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filmotheque/account"
	"github.com/kbukum/filmotheque/auth/authctx"
	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/server"
	"github.com/kbukum/filmotheque/validation"
)

// Handler exposes the film catalogue over HTTP.
type Handler struct {
	repo *Repository
	log  *logger.Logger
}

// NewHandler creates the film HTTP handler.
func NewHandler(repo *Repository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log.WithComponent("film")}
}

// RegisterRoutes mounts the /films routes. Reads are public; gate protects
// every write.
func (h *Handler) RegisterRoutes(r gin.IRouter, gate gin.HandlerFunc) {
	g := r.Group("/films")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	w := g.Group("", gate)
	w.POST("", h.create)
	w.POST("/initialiser", h.seed)
	w.PUT("/:id", h.update)
	w.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	v := validation.New()
	limit := v.PositiveInt("limite", c.Query("limite"), DefaultLimit)
	tri := c.DefaultQuery("tri", FieldAnnee)
	v.OneOf("tri", tri, SortFields)
	ordre, err := resource.ParseDirection(c.Query("ordre"))
	if err != nil {
		v.AddError("ordre", "must be one of: asc, desc")
	}
	if appErr := v.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	films, err := h.repo.List(c.Request.Context(), ListQuery{Tri: tri, Ordre: ordre, Limit: limit})
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	server.RespondOK(c, films)
}

func (h *Handler) get(c *gin.Context) {
	f, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, storeError(err, c.Param("id")))
		return
	}
	server.RespondOK(c, f)
}

func (h *Handler) create(c *gin.Context) {
	ctx := c.Request.Context()
	var in CreateInput
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	in.escape()
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	taken, err := h.repo.TitreTaken(ctx, in.Titre)
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	if taken {
		server.RespondWithError(c, apperrors.AlreadyExists("film").WithDetail("titre", in.Titre))
		return
	}

	f, err := h.repo.Create(ctx, &in)
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	h.audit(ctx, "Film created", f.ID)
	server.RespondCreated(c, f)
}

func (h *Handler) update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var in UpdateInput
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	in.escape()
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	patch := in.patch()
	if len(patch) == 0 {
		server.RespondWithError(c, apperrors.Validation("At least one film field is required."))
		return
	}

	if err := h.repo.Update(ctx, id, patch); err != nil {
		server.RespondWithError(c, storeError(err, id))
		return
	}
	h.audit(ctx, "Film updated", id)

	applied := make(map[string]any, len(patch)+1)
	maps.Copy(applied, patch)
	applied["id"] = id
	server.RespondOK(c, applied)
}

func (h *Handler) delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.repo.Delete(ctx, id); err != nil {
		server.RespondWithError(c, storeError(err, id))
		return
	}
	h.audit(ctx, "Film deleted", id)
	server.RespondOK(c, gin.H{"id": id})
}

func (h *Handler) seed(c *gin.Context) {
	ctx := c.Request.Context()
	added, err := h.repo.Seed(ctx)
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	h.log.WithContext(ctx).Info("Catalogue seeded", logger.Fields("added", len(added)))
	server.RespondOK(c, added)
}

// audit logs a write. The account id comes from the request context; the
// role is read from the resolved account.
func (h *Handler) audit(ctx context.Context, msg, filmID string) {
	fields := logger.Fields("film_id", filmID)
	if acc, ok := authctx.Get[*account.Account](ctx); ok {
		fields["role"] = acc.Role()
	}
	h.log.WithContext(ctx).Info(msg, fields)
}

func storeError(err error, id string) *apperrors.AppError {
	if errors.Is(err, resource.ErrNotFound) {
		return apperrors.NotFound("film", id)
	}
	return apperrors.DatabaseError(err)
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("Request body must be a valid JSON object.").WithCause(err)
	}
	return nil
}
