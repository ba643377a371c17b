package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/chenBenjamin97/pitch-tracker/pkg/config"
	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/chenBenjamin97/pitch-tracker/pkg/video"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//Tagger runs the detection of one uploaded video. video.Tag is used by default.
type Tagger func(ctx context.Context, srcVideoPath string, logger *zap.SugaredLogger)

//DefaultTagger builds the pipeline configuration from the current settings and runs video.Tag
func DefaultTagger(ctx context.Context, srcVideoPath string, logger *zap.SugaredLogger) {
	cfg, err := config.Detection()
	if err != nil {
		logger.Errorw("api/Upload: invalid detection configuration", "error", err)
		return
	}

	if _, err := video.Tag(ctx, srcVideoPath, cfg, logger); err != nil {
		logger.Errorw("api/Upload: tagging failed", "path", srcVideoPath, "error", err)
	}
}

//SetRouter returns the http handler of the project. A nil tagger means DefaultTagger.
func SetRouter(logger *zap.SugaredLogger, tagger Tagger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if tagger == nil {
		tagger = DefaultTagger
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	//serve html pages to client
	staticPath := viper.GetString("frontend.static-files-path")
	r.Static("/client", staticPath)
	r.StaticFile("/", path.Join(staticPath, "index.html"))
	r.GET("/analyze", func(ctx *gin.Context) {
		ctx.File(path.Join(staticPath, "analyze.html"))
	})

	r.GET("/video", streamVideo(logger))
	r.GET("/info", latestInfo(logger))
	r.GET("/download/video", downloadVideo)
	r.GET("/download/info", downloadInfo(logger))

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.ready")); err != nil {
			logger.Errorw("api/ReadyVideosNames", "error", err)
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			logger.Errorw("api/UserUploadsVideosNames", "error", err)
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.POST("/Upload", func(ctx *gin.Context) {
		file, fHeader, err := ctx.Request.FormFile("video")
		if err != nil {
			ctx.Status(http.StatusBadRequest) //missing 'video' form field
			return
		}
		defer file.Close()

		fileName := path.Base(fHeader.Filename)
		if existNames, err := utils.ListDir(viper.GetString("directory.source")); err != nil {
			logger.Errorw("api/Upload: could not list uploads", "error", err)
			ctx.Status(http.StatusInternalServerError)
			return
		} else if utils.InSlice(fileName, existNames) {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		logger.Infow("api/Upload: received new file", "name", fileName, "bytes", fHeader.Size)

		srcFilePath := path.Join(viper.GetString("directory.source"), fileName)
		if err := saveUpload(file, srcFilePath); err != nil {
			logger.Errorw("api/Upload: could not write file", "path", srcFilePath, "error", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		go tagger(context.Background(), srcFilePath, logger)
		ctx.JSON(http.StatusAccepted, gin.H{"name": fileName})
	})

	return r
}

//saveUpload copies the uploaded body into a new read only file
func saveUpload(src io.Reader, dst string) error {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0444)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		logger.Debugw("http",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
		)
	}
}
