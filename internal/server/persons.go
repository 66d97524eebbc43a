// ABOUTME: Person handlers: CRUD, search, linked entities and link/unlink
// ABOUTME: Deleting a person also removes its stored files from disk

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/store"
)

func (s *Server) handleListPersons(c *gin.Context) {
	persons, err := s.store.ListPersons(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, persons)
}

func (s *Server) handleCreatePerson(c *gin.Context) {
	var in model.PersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	p, err := s.store.CreatePerson(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleSearchPersons(c *gin.Context) {
	f := store.PersonFilter{
		Names:          c.Query("names"),
		Lastnames:      c.Query("lastnames"),
		Identification: c.Query("identification"),
		Address:        c.Query("address"),
	}
	if f == (store.PersonFilter{}) {
		badRequest(c, "at least one search field is required")
		return
	}

	persons, err := s.store.SearchPersons(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(persons) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no persons found"})
		return
	}
	c.JSON(http.StatusOK, persons)
}

func (s *Server) handleGetPerson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.GetPerson(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdatePerson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in model.PersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	p, err := s.store.UpdatePerson(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeletePerson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	files, err := s.store.ListPersonFiles(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		s.writeError(c, err)
		return
	}
	for _, f := range files {
		s.removeStored(f.StoredName)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLinked(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.GetPerson(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"person_id":   p.ID,
		"records":     p.RecordRelationships,
		"connections": p.Connections,
	})
}

func (s *Server) handleLinkRecord(c *gin.Context) {
	personID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recordID, ok := pathID(c, "otherId")
	if !ok {
		return
	}
	rel, valid := model.ParseRelationshipType(c.Query("type_relationship"))
	if !valid {
		badRequest(c, "type_relationship must be one of the relationship types")
		return
	}

	link, err := s.store.LinkRecord(c.Request.Context(), personID, recordID, rel)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) handleUnlinkRecord(c *gin.Context) {
	personID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recordID, ok := pathID(c, "otherId")
	if !ok {
		return
	}
	if err := s.store.UnlinkRecord(c.Request.Context(), personID, recordID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLinkPerson(c *gin.Context) {
	personID, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, "otherId")
	if !ok {
		return
	}
	t, valid := model.ParseConnectionType(c.Query("connection_type"))
	if !valid {
		badRequest(c, "connection_type must be one of the connection types")
		return
	}

	conn, err := s.store.ConnectPersons(c.Request.Context(), personID, otherID, t)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (s *Server) handleUnlinkPerson(c *gin.Context) {
	personID, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, "otherId")
	if !ok {
		return
	}
	if err := s.store.DisconnectPersons(c.Request.Context(), personID, otherID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
