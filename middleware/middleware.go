package middleware

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/LTPPPP/did-trust-registry/config"
)

// OperatorClaims authenticates the node-operator/admin API (metrics,
// rate-limit config, registry bootstrap). DID-authenticated writes never
// go through this: those are authorized by action.SignedAction's own
// signature check, not a bearer token.
type OperatorClaims struct {
	jwt.RegisteredClaims
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
}

var (
	tokenBlacklist = make(map[string]time.Time)
	blacklistMutex sync.RWMutex
)

func init() {
	go cleanupBlacklist()
}

func cleanupBlacklist() {
	for {
		time.Sleep(1 * time.Hour)
		blacklistMutex.Lock()
		now := time.Now()
		for tokenID, expiry := range tokenBlacklist {
			if now.After(expiry) {
				delete(tokenBlacklist, tokenID)
			}
		}
		blacklistMutex.Unlock()
	}
}

// RevokeToken adds a token to the blacklist. Called on operator logout.
func RevokeToken(tokenID string, expiryTime time.Time) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	tokenBlacklist[tokenID] = expiryTime
}

// IsTokenRevoked reports whether tokenID has been revoked.
func IsTokenRevoked(tokenID string) bool {
	blacklistMutex.RLock()
	defer blacklistMutex.RUnlock()
	_, found := tokenBlacklist[tokenID]
	return found
}

// JWTMiddleware authenticates the operator/admin API surface with a
// bearer token. It never gates the DID-authenticated write endpoints.
func JWTMiddleware() fiber.Handler {
	issuer := config.GetConfig().JWTIssuer
	secretKey, err := config.GetJWTSecret()
	if err != nil {
		fmt.Printf("Error loading JWT secret: %v, using fallback\n", err)
		if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" && !strings.HasPrefix(envSecret, "file:") {
			secretKey = envSecret
		} else {
			secretKey = fmt.Sprintf("TEMP_KEY_%d", time.Now().UnixNano())
			fmt.Println("WARNING: using a temporary JWT key, operator sessions reset on restart")
		}
	}
	secretKeyBytes := []byte(secretKey)

	return func(c *fiber.Ctx) error {
		if c.Method() == "OPTIONS" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format, expected 'Bearer <token>'")
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secretKeyBytes, nil
		})
		if err != nil {
			if ve, ok := err.(*jwt.ValidationError); ok {
				switch {
				case ve.Errors&jwt.ValidationErrorMalformed != 0:
					return fiber.NewError(fiber.StatusUnauthorized, "token is malformed")
				case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
					return fiber.NewError(fiber.StatusUnauthorized, "token has expired or is not yet valid")
				case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
					return fiber.NewError(fiber.StatusUnauthorized, "token signature is invalid")
				}
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(*OperatorClaims)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to parse token claims")
		}
		if issuer != "" && claims.Issuer != issuer {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token issuer")
		}
		if IsTokenRevoked(claims.ID) {
			return fiber.NewError(fiber.StatusUnauthorized, "token has been revoked")
		}

		c.Locals("operatorID", claims.OperatorID)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RoleMiddleware restricts a route to operators holding one of requiredRoles.
func RoleMiddleware(requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "operator role not found")
		}
		for _, r := range requiredRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf(
			"role '%s' does not have sufficient permissions, required: '%s'", role, strings.Join(requiredRoles, "', '")))
	}
}

// LoggerMiddleware logs request method, path, status and latency.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		fmt.Printf("%s %s -> %d (%s) ip=%s\n",
			c.Method(), c.Path(), c.Response().StatusCode(), duration, c.IP())
		return err
	}
}

// RateLimitMiddleware applies a per-IP fixed request window (the count
// resets once a window has elapsed since the last reset), sized from
// config.RateLimitRequests / config.RateLimitDuration.
func RateLimitMiddleware() fiber.Handler {
	cfg := config.GetConfig()
	maxRequests := cfg.RateLimitRequests
	windowDuration := time.Duration(cfg.RateLimitDuration) * time.Second

	type client struct {
		count     int
		lastReset time.Time
	}
	var (
		clients = make(map[string]*client)
		mu      sync.Mutex
	)

	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, c := range clients {
				if time.Since(c.lastReset) > windowDuration*2 {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		mu.Lock()
		defer mu.Unlock()

		cl, exists := clients[ip]
		if !exists {
			cl = &client{lastReset: time.Now()}
			clients[ip] = cl
		}
		if time.Since(cl.lastReset) > windowDuration {
			cl.count = 0
			cl.lastReset = time.Now()
		}
		cl.count++

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		if cl.count > maxRequests {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", fmt.Sprintf("%d", int(windowDuration.Seconds()-time.Since(cl.lastReset).Seconds())))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-cl.count))
		return c.Next()
	}
}
