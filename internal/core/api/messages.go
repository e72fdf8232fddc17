package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/messaging"
	"github.com/solatis/bulkmsg/internal/types"
)

// draftRequest is a Draft that may take its recipients from a session.
type draftRequest struct {
	messaging.Draft
	SessionID string `json:"sessionId"`
}

// draft resolves recipients from the session when none are given.
func (s *Service) draft(c *gin.Context) (messaging.Draft, bool) {
	var req draftRequest
	if !bind(c, &req) {
		return messaging.Draft{}, false
	}
	d := req.Draft
	if len(d.RecipientIDs) == 0 && req.SessionID != "" {
		sess, err := s.sessions.Get(req.SessionID)
		if err != nil {
			Fail(c, "session not found", err)
			return messaging.Draft{}, false
		}
		d.RecipientIDs = filter.IDs(sess.SelectRecipients())
	}
	return d, true
}

// MessageTemplates returns templates for ?category=, or all of them.
func (s *Service) MessageTemplates(c *gin.Context) {
	cat := filter.Category(c.Query("category"))
	if cat == "" {
		Success(c, http.StatusOK, "templates retrieved", messaging.AllTemplates())
		return
	}
	if !knownCategory(cat) {
		ValidationError(c, "unknown category", nil)
		return
	}
	Success(c, http.StatusOK, "templates retrieved", gin.H{string(cat): messaging.Templates(cat)})
}

// SendMessage simulates a send.
func (s *Service) SendMessage(c *gin.Context) {
	d, ok := s.draft(c)
	if !ok {
		return
	}
	m, err := s.composer.Send(c.Request.Context(), d)
	if err != nil {
		Fail(c, "failed to send message", err)
		return
	}
	Success(c, http.StatusCreated, "message sent", m)
}

// SaveDraft stores a draft.
func (s *Service) SaveDraft(c *gin.Context) {
	d, ok := s.draft(c)
	if !ok {
		return
	}
	m, err := s.composer.SaveDraft(c.Request.Context(), d)
	if err != nil {
		Fail(c, "failed to save draft", err)
		return
	}
	Success(c, http.StatusCreated, "draft saved", m)
}

// ListDrafts returns saved drafts.
func (s *Service) ListDrafts(c *gin.Context) {
	Success(c, http.StatusOK, "drafts retrieved", s.composer.Drafts())
}

// SendDraft sends a saved draft.
func (s *Service) SendDraft(c *gin.Context) {
	m, err := s.composer.SendDraft(c.Request.Context(), types.MessageID(c.Param("msg")))
	if err != nil {
		Fail(c, "failed to send draft", err)
		return
	}
	Success(c, http.StatusOK, "message sent", m)
}

// DeleteDraft discards a draft.
func (s *Service) DeleteDraft(c *gin.Context) {
	if err := s.composer.DeleteDraft(types.MessageID(c.Param("msg"))); err != nil {
		Fail(c, "failed to delete draft", err)
		return
	}
	Success(c, http.StatusOK, "draft deleted", nil)
}

// MessageHistory returns sent messages.
func (s *Service) MessageHistory(c *gin.Context) {
	Success(c, http.StatusOK, "messages retrieved", s.composer.History())
}

// GetMessage returns one message or draft.
func (s *Service) GetMessage(c *gin.Context) {
	m, err := s.composer.Get(types.MessageID(c.Param("msg")))
	if err != nil {
		Fail(c, "message not found", err)
		return
	}
	Success(c, http.StatusOK, "message retrieved", m)
}
