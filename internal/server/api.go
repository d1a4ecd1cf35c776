package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kv-base-hack/crypto-dashboard/common"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) getPage(c *gin.Context) {
	page := s.storage.Page()
	if page == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrPageNotReady.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page": page,
	})
}

func (s *Server) getOptions(c *gin.Context) {
	coins := []string{}
	if page := s.storage.Page(); page != nil {
		coins = page.CoinNames
	}
	c.JSON(http.StatusOK, gin.H{
		"coins":  coins,
		"ranges": common.TimeRanges,
	})
}

func (s *Server) getSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"selection": s.storage.Selection(),
	})
}

func (s *Server) postSelection(c *gin.Context) {
	log := s.log.With("ID", uuid.NewString())

	var request common.Selection
	if err := c.ShouldBindJSON(&request); err != nil || (request.Coin == "" && request.Range == "") {
		log.Errorw("invalid request when post selection", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidSelection.Error()})
		return
	}

	sel := s.storage.SetSelection(request)
	log.Infow("selection changed", "selection", sel)
	s.refresher.Trigger()

	c.JSON(http.StatusAccepted, gin.H{
		"selection": sel,
	})
}

func (s *Server) invalidateCache(c *gin.Context) {
	log := s.log.With("ID", uuid.NewString())

	if err := s.invalidator.Invalidate(c.Request.Context()); err != nil {
		log.Errorw("error when invalidate cache", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrInvalidateCache.Error()})
		return
	}
	s.refresher.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"invalidated": true})
}

// streamPages pushes every published page to a websocket client, starting
// with the current one.
func (s *Server) streamPages(c *gin.Context) {
	log := s.log.With("ID", uuid.NewString())

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorw("error when upgrade websocket", "err", err)
		return
	}
	defer conn.Close()

	pages, cancel := s.storage.Subscribe()
	defer cancel()

	// reader: only control frames are expected, it ends when the client leaves
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if page := s.storage.Page(); page != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(page); err != nil {
			log.Debugw("websocket write failed", "err", err)
			return
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case page, ok := <-pages:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(page); err != nil {
				log.Debugw("websocket write failed", "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
