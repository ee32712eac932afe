package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SwaggerGuard hides the API docs unless enabled, and restricts them to
// allowedIPs when any are given. Entries may be single IPs or CIDRs.
func SwaggerGuard(enabled bool, allowedIPs []string) gin.HandlerFunc {
	var nets []*net.IPNet
	for _, entry := range allowedIPs {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 8 * len(ip.To16())
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			}
			continue
		}
		if _, network, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, network)
		}
	}

	return func(c *gin.Context) {
		if !enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, dto.MsgNotFound))
			return
		}
		if len(allowedIPs) > 0 && !ipAllowed(net.ParseIP(c.ClientIP()), nets) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Access to API documentation is restricted."))
			return
		}
		c.Next()
	}
}

func ipAllowed(ip net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
