package cfg

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Catalog  *CatalogCfg
	Cart     *CartCfg
	Redis    *RedisCfg
	Minio    *MinIOCfg
	Db       *PGDBCfg
	Kafka    *KafkaCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SwaggerURL   string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

// CatalogCfg описывает удалённый API каталога.
type CatalogCfg struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// CartCfg описывает жизненный цикл сессионных корзин.
type CartCfg struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
	CookieName    string
	CookieSecure  bool

	// MaxLineQuantity — верхняя граница количества в одном запросе к корзине
	MaxLineQuantity int
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для изображений товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PublicURL         string // Базовый URL, по которому браузер видит объекты бакета
	UploadImagesLimit int    // Лимит на одновременные загрузки в S3
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type KafkaCfg struct {
	Brokers           []string
	CartTopic         string
	AuditTopic        string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// Load загружает конфигурацию из переменных окружения.
// Если рядом лежит .env, его значения подставляются для незаданных переменных.
func Load() (*Config, error) {
	_ = godotenv.Load()

	http, err := loadHTTPConfig()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cart, err := loadCartCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := LoadPGDBCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Catalog:  catalog,
		Cart:     cart,
		Redis:    redis,
		Minio:    minio,
		Db:       db,
		Kafka:    kafka,
	}, nil
}

func loadHTTPConfig() (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		return nil, e.Wrap("HTTP_READ_TIMEOUT", err)
	}

	// WriteTimeout 0 отключает таймаут; нужно для потока /cart/events.
	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		return nil, e.Wrap("HTTP_WRITE_TIMEOUT", err)
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		return nil, e.Wrap("KEEP_ALIVE", err)
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		SwaggerURL:   getEnvOrDefault("SWAGGER_URL", "http://localhost:"+port+"/swagger/doc.json"),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadCatalogCfg() (*CatalogCfg, error) {
	const (
		defaultTimeout     = 5 * time.Second
		defaultMaxRetries  = 3
		defaultBackoffBase = 200 * time.Millisecond
		defaultBackoffMax  = 2 * time.Second
	)

	baseURL := getEnv("CATALOG_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("CATALOG_API_URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, e.Wrap("CATALOG_API_URL", err)
	}

	timeout, err := parseDurationEnv("CATALOG_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("CATALOG_TIMEOUT", err)
	}

	maxRetries, err := parseIntEnv("CATALOG_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("CATALOG_MAX_RETRIES", err)
	}

	return &CatalogCfg{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Timeout:     timeout,
		MaxRetries:  maxRetries,
		BackoffBase: defaultBackoffBase,
		BackoffMax:  defaultBackoffMax,
	}, nil
}

func loadCartCfg() (*CartCfg, error) {
	const (
		defaultSessionTTL    = 24 * time.Hour
		defaultSweepInterval = time.Minute
		defaultCookieName    = "sid"
		defaultMaxQuantity   = 99
	)

	ttl, err := parseDurationEnv("CART_SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, e.Wrap("CART_SESSION_TTL", err)
	}

	sweep, err := parseDurationEnv("CART_SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, e.Wrap("CART_SWEEP_INTERVAL", err)
	}

	secure, err := strconv.ParseBool(getEnvOrDefault("CART_COOKIE_SECURE", "false"))
	if err != nil {
		return nil, e.Wrap("CART_COOKIE_SECURE", err)
	}

	maxQuantity, err := parseIntEnv("CART_MAX_LINE_QUANTITY", defaultMaxQuantity)
	if err != nil {
		return nil, e.Wrap("CART_MAX_LINE_QUANTITY", err)
	}
	if maxQuantity < 1 {
		return nil, fmt.Errorf("CART_MAX_LINE_QUANTITY must be positive, got %d", maxQuantity)
	}

	return &CartCfg{
		SessionTTL:      ttl,
		SweepInterval:   sweep,
		CookieName:      getEnvOrDefault("CART_COOKIE_NAME", defaultCookieName),
		CookieSecure:    secure,
		MaxLineQuantity: maxQuantity,
	}, nil
}

func loadRedisCfg() (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		return nil, e.Wrap("REDIS_DB_ID", err)
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("REDIS_MAX_RETRIES", err)
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		return nil, e.Wrap("REDIS_DIAL_TIMEOUT", err)
	}

	readTimeout, err := parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		return nil, e.Wrap("REDIS_READ_TIMEOUT", err)
	}

	writeTimeout, err := parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		return nil, e.Wrap("REDIS_WRITE_TIMEOUT", err)
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		return nil, e.Wrap("PRODUCT_TTL", err)
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  productTTL,
	}, nil
}

func loadMinIOCfg() (*MinIOCfg, error) {
	const (
		defaultEndpoint          = "minio:9000"
		defaultBucket            = "product-images"
		defaultUploadImagesLimit = 4
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, e.Wrap("MINIO_USE_SSL", err)
	}

	limit, err := parseIntEnv("MINIO_UPLOAD_LIMIT", defaultUploadImagesLimit)
	if err != nil {
		return nil, e.Wrap("MINIO_UPLOAD_LIMIT", err)
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)
	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicURL:         strings.TrimRight(getEnvOrDefault("MINIO_PUBLIC_URL", scheme+"://"+endpoint), "/"),
		UploadImagesLimit: limit,
	}, nil
}

// LoadPGDBCfg читает настройки PostgreSQL; экспортируется для команды migrate.
func LoadPGDBCfg() (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
		// пул нужен только журналу аудита и outbox-воркеру
		defaultMaxConns = 4
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil {
		return nil, err
	}
	if maxConns < 1 {
		return nil, fmt.Errorf("POSTGRES_MAX_CONNS must be positive, got %d", maxConns)
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns: maxConns,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultCartTopic         = "storefront.cart-events"
		defaultAuditTopic        = "storefront.admin-audit"
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	brokers := make([]string, 0)
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		CartTopic:         getEnvOrDefault("KAFKA_CART_TOPIC", defaultCartTopic),
		AuditTopic:        getEnvOrDefault("KAFKA_AUDIT_TOPIC", defaultAuditTopic),
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
