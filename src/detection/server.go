package detection

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ewaste-server-go/src/configs"
	"ewaste-server-go/src/core/auth"
	"ewaste-server-go/src/core/detect"
	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
	httptransport "ewaste-server-go/src/transport/http"
)

// DefaultDetectionService serves the e-waste detection endpoint.
type DefaultDetectionService struct {
	logger    *utils.TaggedLogger
	detector  *detect.Detector
	authToken *auth.AuthToken // nil when the endpoint token is disabled
	maxBody   int64
}

// NewDefaultDetectionService 构造函数
func NewDefaultDetectionService(config *configs.Config, detector *detect.Detector, logger *utils.Logger) (*DefaultDetectionService, error) {
	if detector == nil {
		return nil, fmt.Errorf("detection service requires a detector")
	}
	s := &DefaultDetectionService{
		logger:   logger.WithTag("detection"),
		detector: detector,
		maxBody:  config.Detection.MaxRequestBytes,
	}
	if s.maxBody <= 0 {
		s.maxBody = configs.DefaultMaxRequestBytes
	}
	if config.Server.Auth.Enabled {
		token, err := auth.NewAuthToken(config.Server.Auth.Secret)
		if err != nil {
			return nil, fmt.Errorf("endpoint token: %w", err)
		}
		s.authToken = token
	}
	return s, nil
}

// Start 注册检测相关路由
func (s *DefaultDetectionService) Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error {
	s.register(apiGroup, "/detect")
	s.register(&engine.RouterGroup, LegacyPath)
	apiGroup.GET("/health", s.handleHealth)
	// verbs outside the registered set reach NoMethod
	engine.NoMethod(s.handleNoMethod)

	s.logger.Info("detection routes registered", utils.Fields{
		"provider":    s.detector.Provider().Name(),
		"auth":        s.authToken != nil,
		"legacy_path": LegacyPath,
	})
	return nil
}

func (s *DefaultDetectionService) register(group *gin.RouterGroup, path string) {
	group.POST(path, s.authorize, s.handleDetect)
	for _, method := range rejectedMethods {
		group.Handle(method, path, s.handleMethodNotAllowed)
	}
}

// rejectedMethods get a JSON 405. A CORS preflight OPTIONS is answered by the
// cors middleware before routing.
var rejectedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

func (s *DefaultDetectionService) handleMethodNotAllowed(c *gin.Context) {
	c.Header("Allow", "POST")
	s.respondError(c, http.StatusMethodNotAllowed, types.TagMethodNotAllowed)
}

func (s *DefaultDetectionService) handleNoMethod(c *gin.Context) {
	s.respondError(c, http.StatusMethodNotAllowed, types.TagMethodNotAllowed)
}

// authorize checks the optional machine-to-machine bearer token.
func (s *DefaultDetectionService) authorize(c *gin.Context) {
	if s.authToken == nil {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		s.logger.Warn("missing bearer token", utils.Fields{"request_id": c.GetString(httptransport.RequestIDKey)})
		s.respondError(c, http.StatusUnauthorized, types.TagUnauthorized)
		return
	}
	clientID, err := s.authToken.VerifyToken(token)
	if err != nil {
		s.logger.Warn("token rejected", utils.Fields{
			"request_id": c.GetString(httptransport.RequestIDKey),
			"error":      err.Error(),
		})
		s.respondError(c, http.StatusUnauthorized, types.TagUnauthorized)
		return
	}
	c.Set("client_id", clientID)
	c.Next()
}

// handleDetect runs the pipeline on the posted form.
func (s *DefaultDetectionService) handleDetect(c *gin.Context) {
	requestID := c.GetString(httptransport.RequestIDKey)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)

	if err := s.parseForm(c.Request); err != nil {
		s.logger.Warn("unreadable form body", utils.Fields{"request_id": requestID, "error": err.Error()})
		s.respondError(c, http.StatusBadRequest, types.TagInvalidImage)
		return
	}

	verdict, err := s.detector.Detect(c.Request.Context(), detect.Request{
		RequestID: requestID,
		Image:     c.Request.PostFormValue(FieldImage),
		Item:      c.Request.PostFormValue(FieldItem),
	})
	c.JSON(statusFor(err), verdict)
}

func (s *DefaultDetectionService) parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(s.maxBody)
	}
	return r.ParseForm()
}

// statusFor maps a pipeline error to the HTTP status. Provider failures stay 200.
func statusFor(err error) int {
	if err != nil && apperrors.IsKind(err, apperrors.KindValidation) {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func (s *DefaultDetectionService) handleHealth(c *gin.Context) {
	provider := s.detector.Provider()
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		Provider:       provider.Name(),
		NeedsImage:     provider.NeedsImage(),
		VocabularySize: s.detector.Classifier().Vocabulary().Size(),
		Image:          s.detector.Metrics(),
	})
}

// respondError 返回错误响应
func (s *DefaultDetectionService) respondError(c *gin.Context, status int, tag string) {
	c.AbortWithStatusJSON(status, types.ErrorVerdict(tag))
}
