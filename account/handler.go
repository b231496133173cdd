package account

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/server"
	"github.com/kbukum/filmotheque/validation"
)

// Handler exposes the account flows over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates the account HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /utilisateurs/inscription and /utilisateurs/connexion.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/utilisateurs")
	g.POST("/inscription", h.register)
	g.POST("/connexion", h.login)
}

func (h *Handler) register(c *gin.Context) {
	var in RegisterInput
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	acc, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, acc)
}

func (h *Handler) login(c *gin.Context) {
	var in LoginInput
	if err := bindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, sess)
}

func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPrivilegeNotNumeric) {
		v := validation.New()
		v.AddError("privilege", ErrPrivilegeNotNumeric.Error())
		return v.Validate()
	}
	return apperrors.Validation("Request body must be a valid JSON object.").WithCause(err)
}
