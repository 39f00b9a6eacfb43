package detection

import (
	"context"

	"github.com/gin-gonic/gin"
)

// DetectionService 定义检测服务接口
type DetectionService interface {
	// 将检测路由注册到 engine 与 apiGroup
	Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error
}
