package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 320

// handleGameQR renders the game's play link as a PNG QR code so one phone
// can pull the other player into the game.
func (s *Server) handleGameQR(c *gin.Context) {
	game, err := s.store.GetGame(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	playURL := s.cfg.PublicBaseURL + "/play/" + game.ID
	png, err := qrcode.Encode(playURL, qrcode.Medium, qrSize)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
