package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/chenBenjamin97/pitch-tracker/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//ErrBadRange is returned by parseRange for a Range header that can not be served
var ErrBadRange = errors.New("requested range not satisfiable")

const noResultsMessage = "no detection results found"

//parseRange parses "bytes=start-end" against a file of size bytes. A missing end means the last byte.
func parseRange(header string, size int64) (int64, int64, error) {
	byteRange := strings.TrimPrefix(strings.TrimSpace(header), "bytes=")
	startStr, endStr, found := strings.Cut(byteRange, "-")
	if !found {
		return 0, 0, errors.Wrapf(ErrBadRange, "malformed range %q", header)
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrBadRange, "malformed start %q", startStr)
	}

	end := size - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		if end, err = strconv.ParseInt(endStr, 10, 64); err != nil {
			return 0, 0, errors.Wrapf(ErrBadRange, "malformed end %q", endStr)
		}
	}

	if start < 0 || start >= size || end >= size || end < start {
		return 0, 0, errors.Wrapf(ErrBadRange, "bytes %d-%d of %d", start, end, size)
	}
	return start, end, nil
}

//videoPath returns the tagged video called name in 'ready' directory, or the newest one when name is empty
func videoPath(name string) (string, error) {
	format := viper.GetString("video.prod_format")
	readyDir := viper.GetString("directory.ready")
	if name == "" {
		return utils.LatestFile(readyDir, "."+format)
	}
	return path.Join(readyDir, path.Base(utils.TrimExtension(name))+"."+format), nil
}

//streamVideo serves a tagged video, answering Range requests with a single 206 chunk
func streamVideo(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, err := videoPath(ctx.Query("name"))
		if err != nil {
			logger.Errorw("video", "error", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if p == "" { //nothing tagged yet
			ctx.Status(http.StatusNotFound)
			return
		}

		f, err := os.Open(p)
		if err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			}
			logger.Errorw("video: could not open", "path", p, "error", err)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		size := info.Size()

		rangeHeader := ctx.GetHeader("Range")
		if rangeHeader == "" {
			ctx.DataFromReader(http.StatusOK, size, "video/mp4", f, map[string]string{"Accept-Ranges": "bytes"})
			return
		}

		start, end, err := parseRange(rangeHeader, size)
		if err != nil {
			ctx.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
			ctx.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}

		if _, err := f.Seek(start, io.SeekStart); err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}

		length := end - start + 1
		ctx.DataFromReader(http.StatusPartialContent, length, "video/mp4", io.LimitReader(f, length), map[string]string{
			"Content-Range": fmt.Sprintf("bytes %d-%d/%d", start, end, size),
			"Accept-Ranges": "bytes",
		})
	}
}

//latestResults returns the newest detection record, answering 404 itself when there is none
func latestResults(ctx *gin.Context, logger *zap.SugaredLogger) (string, bool) {
	p, err := utils.LatestFile(viper.GetString("directory.json"), utils.ResultsExtension)
	if err != nil {
		logger.Errorw("info: listing results", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", false
	}
	if p == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"error": noResultsMessage})
		return "", false
	}
	return p, true
}

func latestInfo(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, ok := latestResults(ctx, logger)
		if !ok {
			return
		}

		body, err := os.ReadFile(p)
		if err != nil {
			logger.Errorw("info: reading results", "path", p, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.Data(http.StatusOK, "application/json", body)
	}
}

func downloadVideo(ctx *gin.Context) {
	p, err := videoPath(ctx.Query("name"))
	if err != nil || p == "" {
		ctx.Status(http.StatusNotFound)
		return
	}
	if _, err := os.Stat(p); err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}
	ctx.FileAttachment(p, path.Base(p))
}

func downloadInfo(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p, ok := latestResults(ctx, logger)
		if !ok {
			return
		}
		ctx.FileAttachment(p, path.Base(p))
	}
}
