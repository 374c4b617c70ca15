package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/takahashi-jo/care-emr/internal/i18n"
	"github.com/takahashi-jo/care-emr/internal/services"
	"go.uber.org/zap"
)

const (
	localCurrentUser = "currentUser"
	localLanguage    = "language"
)

type Handler struct {
	auth      *services.AuthService
	residents *services.ResidentService
	records   *services.MedicalRecordService
	export    *services.ExportService
	i18n      *i18n.Manager
	validate  *validator.Validate
	logger    *zap.Logger
	secretKey []byte
	location  *time.Location
	tokenTTL  time.Duration
}

type authClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Dependencies struct {
	Auth      *services.AuthService
	Residents *services.ResidentService
	Records   *services.MedicalRecordService
	Export    *services.ExportService
	I18n      *i18n.Manager
	Logger    *zap.Logger
	SecretKey []byte
	Location  *time.Location
	TokenTTL  time.Duration
}

func NewHandler(deps Dependencies) *Handler {
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	tokenTTL := deps.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auth:      deps.Auth,
		residents: deps.Residents,
		records:   deps.Records,
		export:    deps.Export,
		i18n:      deps.I18n,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		secretKey: deps.SecretKey,
		location:  location,
		tokenTTL:  tokenTTL,
	}
}
