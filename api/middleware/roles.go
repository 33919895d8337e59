package middleware

import (
	"net/http"
	"strings"

	"github.com/kaizerhaus/kaizerhaus-backend/api/responses"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/enums"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
)

const (
	funcionarioPath = "/funcionario"
	adminPath       = "/admin"
	loginPath       = "/login"
	homePath        = "/"
)

// RedirectTarget returns where an authenticated caller with the given role
// must land when requesting path, or "" when the path is allowed.
//
// Staff roles live exactly at /funcionario. Admins live under /admin.
// Regular users get neither surface.
func RedirectTarget(hierarquia enums.Hierarquia, path string) string {
	switch hierarquia {
	case enums.HierarquiaFuncionario, enums.HierarquiaColaborador:
		if path != funcionarioPath {
			return funcionarioPath
		}
	case enums.HierarquiaAdmin:
		if path != adminPath && !strings.HasPrefix(path, adminPath+"/") {
			return adminPath
		}
	default:
		if path == funcionarioPath || path == adminPath || strings.HasPrefix(path, adminPath+"/") {
			return homePath
		}
	}
	return ""
}

// RoleRedirect enforces the per-role surface rules on every request that
// passed Auth.
func RoleRedirect(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hierarquia := enums.NormalizeHierarquia(HierarquiaFromContext(r.Context()))
			if target := RedirectTarget(hierarquia, r.URL.Path); target != "" {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"hierarquia": hierarquia.String(),
						"target":     target,
					})
					logg.Info(ctx, "role redirect")
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAnonymousToLogin sends credential-less requests to the login page.
// It runs before token validation on the staff subtree, where browsers
// navigate directly and a redirect is more useful than a bare 401.
func RedirectAnonymousToLogin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				if logg != nil {
					logg.Info(logg.WithField(r.Context(), "path", r.URL.Path), "anonymous staff request, redirecting to login")
				}
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireFuncionario gates the staff API. Callers without a session go to the
// login page; authenticated non-staff callers are refused outright.
func RequireFuncionario(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := HierarquiaFromContext(r.Context())
			if raw == "" {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			if !enums.NormalizeHierarquia(raw).IsStaff() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
