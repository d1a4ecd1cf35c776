package storage

import (
	"sync"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/render"
	"go.uber.org/zap"
)

const subscriberBuffer = 4

// Storage holds the state that outlives a refresh pass: the operator
// selection and the last rendered page.
type Storage struct {
	log   *zap.SugaredLogger
	mutex sync.RWMutex

	selection   common.Selection
	page        *render.Page
	subscribers map[chan *render.Page]struct{}
}

func NewStorage(log *zap.SugaredLogger, selection common.Selection) *Storage {
	return &Storage{
		log:         log,
		selection:   selection,
		subscribers: make(map[chan *render.Page]struct{}),
	}
}

func (s *Storage) Selection() common.Selection {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.selection
}

// SetSelection stores the selection, empty fields keep their current value.
func (s *Storage) SetSelection(sel common.Selection) common.Selection {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if sel.Coin != "" {
		s.selection.Coin = sel.Coin
	}
	if sel.Range != "" {
		s.selection.Range = sel.Range
	}
	s.log.Debugw("set selection", "selection", s.selection)
	return s.selection
}

// Page returns the last published page, nil before the first pass.
func (s *Storage) Page() *render.Page {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.page
}

// SetPage publishes a page and hands it to every subscriber. Subscribers that
// are not keeping up miss the page.
func (s *Storage) SetPage(page *render.Page) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.page = page
	for ch := range s.subscribers {
		select {
		case ch <- page:
		default:
			s.log.Debugw("subscriber is behind, drop page")
		}
	}
}

// Subscribe returns a channel receiving every published page and a cancel
// func that must be called when done.
func (s *Storage) Subscribe() (<-chan *render.Page, func()) {
	ch := make(chan *render.Page, subscriberBuffer)

	s.mutex.Lock()
	s.subscribers[ch] = struct{}{}
	s.mutex.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mutex.Lock()
			delete(s.subscribers, ch)
			s.mutex.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
