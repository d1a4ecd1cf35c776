package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/render"
)

type dashboardView struct {
	Title          string
	RefreshSeconds int
	Page           *render.Page
	// Selection preselects the dropdowns. It is the stored operator choice,
	// not the one the page was rendered with.
	Selection common.Selection
}

func (s *Server) getDashboard(c *gin.Context) {
	page := s.storage.Page()
	c.HTML(http.StatusOK, "dashboard.html", dashboardView{
		Title:          render.Title,
		RefreshSeconds: int(s.refresh / time.Second),
		Page:           page,
		Selection:      formSelection(s.storage.Selection(), page),
	})
}

// formSelection keeps the stored choice when the page offers it and falls
// back to what the page resolved otherwise.
func formSelection(stored common.Selection, page *render.Page) common.Selection {
	if page == nil {
		return stored
	}
	sel := page.Selection
	if contains(page.CoinNames, stored.Coin) {
		sel.Coin = stored.Coin
	}
	if contains(page.RangeLabels, stored.Range) {
		sel.Range = stored.Range
	}
	return sel
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (s *Server) postSelectionForm(c *gin.Context) {
	log := s.log.With("ID", uuid.NewString())

	var request common.Selection
	if err := c.ShouldBind(&request); err != nil || (request.Coin == "" && request.Range == "") {
		log.Errorw("invalid request when post selection form", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidSelection.Error()})
		return
	}

	// subscribe first so the page of the triggered pass is not missed
	pages, cancel := s.storage.Subscribe()
	defer cancel()

	sel := s.storage.SetSelection(request)
	log.Infow("selection changed", "selection", sel)
	s.refresher.Trigger()

	wait := time.NewTimer(s.passWait)
	defer wait.Stop()
	select {
	case <-pages:
	case <-wait.C:
		log.Warnw("refresh pass still running, redirect with the previous page", "wait", s.passWait)
	case <-c.Request.Context().Done():
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) getChart(c *gin.Context) {
	page := s.storage.Page()
	if page == nil || page.Chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNoChart.Error()})
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Chart.Render(c.Writer); err != nil {
		s.log.Errorw("error when render chart", "err", err)
	}
}

func (s *Server) getHealth(c *gin.Context) {
	page := s.storage.Page()
	res := gin.H{"status": "ok"}
	if page != nil {
		res["last_pass"] = page.GeneratedAt
		res["halted"] = page.Halted
	}
	c.JSON(http.StatusOK, res)
}
