package server

import (
	"context"
	"encoding/json"
	stdhttp "net/http"

	"github.com/gaoyong06/go-pkg/health"
	"github.com/gaoyong06/go-pkg/middleware/i18n"

	"xinyuan_tech/membership-service/internal/auth"
	"xinyuan_tech/membership-service/internal/conf"
	"xinyuan_tech/membership-service/internal/service"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/validate"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Bootstrap, membership *service.MembershipService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			// 添加参数验证中间件
			validate.Validator(),
			// 添加 i18n 中间件
			i18n.Middleware(),
			// 网关透传的用户身份
			authMiddleware(),
		),
		http.ErrorEncoder(customErrorEncoder),
	}
	if c.Server.Http.Addr != "" {
		opts = append(opts, http.Address(c.Server.Http.Addr))
	}
	srv := http.NewServer(opts...)

	// 注册业务路由
	membership.RegisterRoutes(srv)

	// 注册健康检查端点
	srv.Route("/").GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, health.NewResponse("membership-service"))
	})

	return srv
}

// authMiddleware 从网关注入的请求头恢复用户身份
// 服务部署在网关之后，X-User-ID / X-User-Role 由网关鉴权后写入
func authMiddleware() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				if uid := tr.RequestHeader().Get("X-User-ID"); uid != "" {
					ctx = context.WithValue(ctx, auth.UserIDKey, uid)
				}
				if role := tr.RequestHeader().Get("X-User-Role"); role != "" {
					ctx = context.WithValue(ctx, auth.UserRoleKey, auth.Role(role))
				}
			}
			return handler(ctx, req)
		}
	}
}

func customErrorEncoder(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	se := kerrors.FromError(err)
	status := stdhttp.StatusInternalServerError
	response := map[string]interface{}{
		"code":    status,
		"message": "internal server error",
	}

	if se != nil {
		status = mapErrorStatus(int(se.Code))
		response["code"] = se.Code
		response["reason"] = se.Reason
		response["message"] = se.Message
		if len(se.Metadata) > 0 {
			response["metadata"] = se.Metadata
		}
	} else if err != nil {
		response["message"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func mapErrorStatus(code int) int {
	if code >= 100 && code < 600 {
		return code
	}
	if code >= 140000 && code < 150000 {
		return stdhttp.StatusBadRequest
	}
	return stdhttp.StatusInternalServerError
}
