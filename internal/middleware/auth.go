package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hossamdev/portfolio-api/internal/infra/identity"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
)

// AdminKey is the context key under which AdminAuth stores the verified
// admin identity.
const AdminKey = "admin"

// AdminAuth gates the admin surface behind the identity provider: the
// bearer token is verified remotely and the resolved user is set in the
// request context. Missing or invalid tokens abort with 401.
func AdminAuth(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := otel.Tracer("middleware").Start(c.Request.Context(), "admin_auth",
			trace.WithAttributes(attribute.String("middleware", "admin_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			span.SetAttributes(attribute.Bool("authenticated", false))
			span.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		user, err := provider.Verify(token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("authenticated", false))
			span.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		if root := trace.SpanFromContext(ctx); root.SpanContext().IsValid() {
			root.SetAttributes(attribute.String("admin_id", user.ID))
		}
		span.SetAttributes(
			attribute.String("admin_id", user.ID),
			attribute.Bool("authenticated", true),
		)
		span.End()

		c.Set(AdminKey, user)
		c.Next()
	}
}
