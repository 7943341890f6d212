package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cacheIdKey = "CACHE_ID"

// GetCacheId returns the id of the invite cache bound to this browser,
// creating and saving a new one on first use.
func GetCacheId(c *gin.Context) (string, error) {
	s := sessions.Default(c)
	if id, ok := s.Get(cacheIdKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	s.Set(cacheIdKey, id)
	s.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
	})
	return id, s.Save()
}

// ClearCacheId forgets the cache id so the next request starts a new cache.
func ClearCacheId(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(cacheIdKey)
	return s.Save()
}
