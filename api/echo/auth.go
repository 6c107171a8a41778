package echoapi

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
)

const (
	contextTokenKey   = "accountToken"
	contextAccountKey = "account"
)

// appJWTConfig is the JWT auth middleware config for the given app settings.
func appJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OriginalIssuedAt int64  `json:"oriat,omitempty"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role,omitempty"`
}

func (c Claims) caller() core.Caller {
	id, _ := strconv.Atoi(c.Subject)
	return core.Caller{ID: id, Email: c.Email, Role: c.Role}
}

func GetAccountClaims(conf *core.Config, acct staff.Account, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(acct.ID()),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OriginalIssuedAt: oriat,
		Email:            acct.Email(),
		Role:             acct.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// refreshToken re-issues a token for the authenticated account, carrying over
// the original issue time. Refreshing stops once the refresh window closes;
// the account must then log in again.
func refreshToken(ctx echo.Context, conf *core.Config) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return "", err
	}

	expTime := time.Unix(claims.OriginalIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	return GenerateToken(conf, GetAccountClaims(conf, acct, claims.OriginalIssuedAt))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context) (staff.Account, error) {
	if acct, ok := ctx.Get(contextAccountKey).(staff.Account); ok {
		return acct, nil
	}
	return staff.Account{}, errUnauthorized
}

// accountMiddleware re-fetches the authenticated account on every request so
// that a deactivated or deleted account loses access immediately, regardless
// of its token's remaining lifetime.
func accountMiddleware(svc *staff.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			acct, err := svc.GetAccount(ctx.Request().Context(), claims.caller())
			if err != nil {
				if errors.Cause(err) == core.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding account by ID")
			}
			if !acct.IsActive() {
				return errAccountDeactivated
			}
			ctx.Set(contextAccountKey, acct)
			return next(ctx)
		}
	}
}

func managerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			acct, err := getContextAccount(ctx)
			if err != nil {
				return err
			}
			if acct.Caller().IsManager() {
				return next(ctx)
			}
			return errHTTPForbidden
		}
	}
}
