package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DOMINIO
// =================================================================================

// CompanyID crea un campo para el ID de la empresa (tenant).
func CompanyID(v string) zap.Field {
	return zap.String("company_id", v)
}

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email crea un campo para el email (ya normalizado).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// ShopDomain crea un campo para el dominio de la tienda Shopify.
func ShopDomain(v string) zap.Field {
	return zap.String("shop_domain", v)
}

// Role crea un campo para el rol de membresía.
func Role(v string) zap.Field {
	return zap.String("role", v)
}

// InviteID crea un campo para el ID de una invitación.
func InviteID(v string) zap.Field {
	return zap.String("invite_id", v)
}

// JoinCodeID crea un campo para el ID de un join code.
func JoinCodeID(v string) zap.Field {
	return zap.String("join_code_id", v)
}

// MembershipID crea un campo para el ID de una membresía.
func MembershipID(v string) zap.Field {
	return zap.String("membership_id", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - ARQUITECTURA
// =================================================================================

// Layer identifica la capa: "controller", "service", "store", "client".
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component identifica el componente: "link.callback", "membership.invite", etc.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op identifica la operación puntual en curso.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String crea un campo string arbitrario.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int arbitrario.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool arbitrario.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Duration crea un campo de duración.
func Duration(key string, v time.Duration) zap.Field {
	return zap.Duration(key, v)
}

// Any crea un campo de tipo arbitrario (usa reflexión; evitar en hot paths).
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
