package middleware

import (
	"engsupply-erp/services"
	"engsupply-erp/types"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	localUserID    = "userID"
	localCompanyID = "companyID"
	localSessionID = "sessionID"
)

type AuthMiddleware struct {
	secret []byte
	users  *services.UserService
	log    *zap.Logger
}

func NewAuthMiddleware(secret string, users *services.UserService, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), users: users, log: log}
}

// IssueToken membuat access token HS256 berisi user_id, company_id dan session_id.
func IssueToken(secret string, userID, companyID types.SnowflakeID, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID.String(),
		"company_id": companyID.String(),
		"session_id": uuid.NewString(),
		"exp":        time.Now().Add(ttl).Unix(),
		"jti":        uuid.NewString(),
	})
	return token.SignedString([]byte(secret))
}

func (a *AuthMiddleware) Authenticate(ctx *fiber.Ctx) error {
	// Ambil token dari "Bearer <token>"
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Missing Authorization header",
		})
	}
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid Authorization header format",
		})
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		a.log.Debug("rejected token", zap.Error(err))
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid token",
		})
	}

	userID, err := claimID(claims, "user_id")
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid user ID",
		})
	}
	companyID, err := claimID(claims, "company_id")
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid company ID",
		})
	}
	sessionID, _ := claims["session_id"].(string)

	ctx.Locals(localUserID, userID)
	ctx.Locals(localCompanyID, companyID)
	ctx.Locals(localSessionID, sessionID)
	return ctx.Next()
}

func claimID(claims jwt.MapClaims, key string) (types.SnowflakeID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return 0, fmt.Errorf("claim %s missing", key)
	}
	return types.ParseSnowflakeID(raw)
}

// CheckPermission harus dipasang setelah Authenticate.
func (a *AuthMiddleware) CheckPermission(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: Invalid user ID",
			})
		}

		allowed, err := a.users.HasPermission(c.UserContext(), userID, requiredPermission)
		if err != nil || !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: You do not have permission",
			})
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) types.SnowflakeID {
	id, _ := c.Locals(localUserID).(types.SnowflakeID)
	return id
}

func CompanyID(c *fiber.Ctx) types.SnowflakeID {
	id, _ := c.Locals(localCompanyID).(types.SnowflakeID)
	return id
}
