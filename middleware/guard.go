package middleware

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"letterdesk/permissions"

	"github.com/gofiber/fiber/v2"
)

// LoginRoute is where unauthenticated sessions are sent.
const LoginRoute = "/auth/login"

// GuardConfig controls what an authenticated-but-unauthorized session
// gets: a redirect to Fallback when set, otherwise a 403 envelope. The
// protected handler is never reached either way.
type GuardConfig struct {
	Fallback string
}

// RequirePermissions gates a route on the requester's resolved permission
// set. An empty required list means the route is always visible to any
// authenticated session.
func RequirePermissions(resolver *permissions.Resolver, cfg GuardConfig, required ...permissions.Code) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":   false,
				"message":  "Authentication required",
				"redirect": LoginRoute,
			})
		}

		set, err := resolver.Resolve(userID)
		if err != nil {
			return ErrorResponse(c, err)
		}
		if !set.HasAny(required...) {
			if cfg.Fallback != "" {
				return c.Redirect(cfg.Fallback, fiber.StatusSeeOther)
			}
			return JsonResponse(c, fiber.StatusForbidden, false,
				"You do not have permission to access this resource!", nil)
		}

		return c.Next()
	}
}

// InlineGuard decides whether a UI fragment is visible to a user and
// emits at most one warning per failed evaluation: the warning re-fires
// only after the evaluated state changes back to allowed.
type InlineGuard struct {
	resolver *permissions.Resolver

	mu     sync.Mutex
	warned map[string]bool
}

func NewInlineGuard(resolver *permissions.Resolver) *InlineGuard {
	return &InlineGuard{resolver: resolver, warned: make(map[string]bool)}
}

// Allow reports whether the fragment is visible. An empty required list
// is always visible.
func (g *InlineGuard) Allow(userID uint, required ...permissions.Code) bool {
	set, err := g.resolver.Resolve(userID)
	if err != nil {
		// Fail closed on resolution errors.
		return len(required) == 0
	}
	allowed := set.HasAny(required...)

	key := guardKey(userID, required)
	g.mu.Lock()
	if allowed {
		delete(g.warned, key)
	} else if !g.warned[key] {
		g.warned[key] = true
		log.Printf("[GUARD] user %d denied fragment requiring %v", userID, required)
	}
	g.mu.Unlock()

	return allowed
}

// Forget drops a user's warning state, so the map does not accumulate
// entries for users whose permissions were changed or who were removed.
// Call it alongside resolver invalidation.
func (g *InlineGuard) Forget(userID uint) {
	prefix := fmt.Sprintf("%d|", userID)
	g.mu.Lock()
	for key := range g.warned {
		if strings.HasPrefix(key, prefix) {
			delete(g.warned, key)
		}
	}
	g.mu.Unlock()
}

func guardKey(userID uint, required []permissions.Code) string {
	parts := make([]string, len(required))
	for i, c := range required {
		parts[i] = string(c)
	}
	return fmt.Sprintf("%d|%s", userID, strings.Join(parts, ","))
}
