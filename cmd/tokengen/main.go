// tokengen 签发或吊销运维/服务令牌
//
//	go run ./cmd/tokengen -role admin -subject ops@duka
//	go run ./cmd/tokengen -role service -subject order-service -ttl 720h
//	go run ./cmd/tokengen -revoke <token>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukamart/inventory/internal/infrastructure/config"
	"github.com/dukamart/inventory/internal/infrastructure/persistence/redis"
	"github.com/dukamart/inventory/pkg/jwt"
	"github.com/dukamart/inventory/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "配置文件路径")
	subject := flag.String("subject", "", "令牌主体(调用方标识)")
	role := flag.String("role", jwt.RoleService, "角色: admin | service")
	ttl := flag.Duration("ttl", 0, "有效期,为0时使用jwt.access_token_expire")
	revokeToken := flag.String("revoke", "", "吊销指定令牌(写入Redis黑名单,直到令牌过期)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if *revokeToken != "" {
		log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Output: os.Stderr})
		claims, err := revoke(context.Background(), cfg, *revokeToken, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "吊销失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "已吊销 subject=%s role=%s,黑名单保留至 %s\n",
			claims.Subject, claims.Role, claims.ExpiresAt.Format(time.RFC3339))
		return
	}

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -subject")
		os.Exit(2)
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleService {
		fmt.Fprintf(os.Stderr, "未知角色: %s\n", *role)
		os.Exit(2)
	}

	expire := cfg.JWT.AccessTokenExpire
	if *ttl > 0 {
		expire = *ttl
	}

	token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, expire).GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "有效期至 %s\n", time.Now().Add(expire).Format(time.RFC3339))
}

// revoke 校验令牌后写入黑名单
// 只吊销本服务签发且未过期的令牌,过期令牌本来就会被拒绝
func revoke(ctx context.Context, cfg *config.Config, token string, log zerolog.Logger) (*jwt.Claims, error) {
	claims, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire).ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("令牌无效或已过期: %w", err)
	}

	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := redis.NewTokenBlacklist(client).RevokeUntil(ctx, token, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	return claims, nil
}
