package handler

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	// 注册 DecodeConfig 可识别的图片格式
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxCoverSize = 5 << 20

var coverExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadBookCover 上传教材封面，仅接受 png/jpeg/gif/webp
func (a *API) UploadBookCover(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的教材ID")
		return
	}

	// 先校验权限再落盘
	if _, err := a.books.RequireOwner(currentActor(c), id); err != nil {
		respondServiceError(c, err, "上传封面失败")
		return
	}

	url, status, message := a.saveImage(c, "image")
	if status != http.StatusOK {
		respondError(c, status, message)
		return
	}

	book, err := a.books.SetCover(currentActor(c), id, url)
	if err != nil {
		respondServiceError(c, err, "上传封面失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上传成功",
		"url":     url,
		"book":    bookPayload(*book),
	})
}

// saveImage 校验并保存上传的图片，返回访问地址
func (a *API) saveImage(c *gin.Context, field string) (string, int, string) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", http.StatusBadRequest, "未找到上传的图片"
	}
	if file.Size > maxCoverSize {
		return "", http.StatusBadRequest, "图片不能超过 5MB"
	}

	src, err := file.Open()
	if err != nil {
		return "", http.StatusBadRequest, "读取图片失败"
	}
	defer src.Close()

	_, format, err := image.DecodeConfig(src)
	if err != nil {
		return "", http.StatusBadRequest, "只允许上传 png/jpeg/gif/webp 图片"
	}
	ext, ok := coverExtensions[format]
	if !ok {
		return "", http.StatusBadRequest, "只允许上传 png/jpeg/gif/webp 图片"
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", http.StatusInternalServerError, "读取图片失败"
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", http.StatusInternalServerError, "创建上传目录失败"
	}

	filename := fmt.Sprintf("%s-%s%s", a.clock().Format("20060102"), uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(a.uploadDir, filename))
	if err != nil {
		return "", http.StatusInternalServerError, "保存文件失败"
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", http.StatusInternalServerError, "保存文件失败"
	}

	return path.Join(a.uploadURL, filename), http.StatusOK, ""
}
