package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/config"
	"github.com/minibank/minibank/pkg/broker"
	"github.com/minibank/minibank/pkg/cache"
	"github.com/minibank/minibank/pkg/helpers"
	"github.com/minibank/minibank/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	appCache    *cache.Cache

	jwtManager *helpers.JWTManager

	mailgunClient *mailer.Mailgun
	msgBroker     broker.MessageBroker
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetCache(c *cache.Cache)      { appCache = c }
func GetCache() *cache.Cache       { return appCache }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetMailgun(m *mailer.Mailgun)       { mailgunClient = m }
func GetMailgun() *mailer.Mailgun        { return mailgunClient }
func SetBroker(b broker.MessageBroker)   { msgBroker = b }
func GetBroker() broker.MessageBroker    { return msgBroker }
