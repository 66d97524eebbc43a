// ABOUTME: Record handlers: CRUD, search and aggregate statistics
// ABOUTME: Search answers 404 with a detail body when nothing matches

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/store"
)

func (s *Server) handleListRecords(c *gin.Context) {
	records, err := s.store.ListRecords(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) bindRecord(c *gin.Context) (model.RecordInput, bool) {
	var in model.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return in, false
	}
	if err := in.Validate(); err != nil {
		s.writeError(c, err)
		return in, false
	}
	return in, true
}

func (s *Server) handleCreateRecord(c *gin.Context) {
	in, ok := s.bindRecord(c)
	if !ok {
		return
	}
	r, err := s.store.CreateRecord(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) handleSearchRecords(c *gin.Context) {
	f := store.RecordFilter{
		Title:      c.Query("title"),
		Content:    c.Query("content"),
		TypeRecord: c.Query("type_record"),
		PersonName: c.Query("person_name"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
	}
	if f == (store.RecordFilter{}) {
		badRequest(c, "at least one search field is required")
		return
	}

	records, err := s.store.SearchRecords(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no records found"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleRecordStats(c *gin.Context) {
	stats, err := s.store.RecordStats(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := s.store.GetRecord(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleUpdateRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := s.bindRecord(c)
	if !ok {
		return
	}
	r, err := s.store.UpdateRecord(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleDeleteRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteRecord(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
