package apiutil

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetIPFromContext returns the client address, honouring proxy headers
func GetIPFromContext(c *gin.Context) (*string, error) {
	ip := c.Request.Header.Get("X-Real-IP")
	if len(ip) > 0 {
		return &ip, nil
	}

	ip = c.Request.Header.Get("X-Forwarded-For")
	ipList := strings.Split(ip, ",")
	if first := strings.TrimSpace(ipList[0]); len(first) > 0 {
		return &first, nil
	}

	// If there is no "X-Real-IP" or "X-Forwarded-For", get IP from "RemoteAddr"
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return nil, err
	}
	return &ip, nil
}
