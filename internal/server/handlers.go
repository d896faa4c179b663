package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/engine"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/layout"
	"github.com/Calindra/solana-twitter/internal/program"
)

// PostView is the JSON form of a post record.
type PostView struct {
	Address   string `json:"address"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
	Topic     string `json:"topic"`
	Content   string `json:"content"`
}

// ProfileView is the JSON form of a profile record.
type ProfileView struct {
	Address     string `json:"address"`
	Owner       string `json:"owner"`
	LinkedAsset string `json:"linked_asset"`
}

// AccountView is the JSON form of a raw slot.
type AccountView struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Kind    string `json:"kind,omitempty"`
	Size    int    `json:"size"`
	Deposit int64  `json:"deposit"`
	Payer   string `json:"payer"`
	Data    string `json:"data"` // base64
}

func NewPostView(addr address.Address, p layout.Post) PostView {
	return PostView{
		Address:   addr.String(),
		Author:    p.Author.String(),
		Timestamp: p.Timestamp,
		Topic:     p.Topic,
		Content:   p.Content,
	}
}

func NewProfileView(addr address.Address, p layout.Profile) ProfileView {
	return ProfileView{
		Address:     addr.String(),
		Owner:       p.Owner.String(),
		LinkedAsset: p.LinkedAsset.String(),
	}
}

func NewAccountView(addr address.Address, slot program.Slot) AccountView {
	return AccountView{
		Address: addr.String(),
		Owner:   slot.Owner.String(),
		Kind:    layout.Kind(slot.Data),
		Size:    len(slot.Data),
		Deposit: slot.Deposit,
		Payer:   slot.Payer.String(),
		Data:    base64.StdEncoding.EncodeToString(slot.Data),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"program_id": h.Engine.ProgramID().String(),
		"seq":        h.Engine.Seq(),
	})
}

// SubmitTransaction executes a signed transaction and returns its receipt.
// Failed instructions answer 422 with the failed receipt.
func (h *Handler) SubmitTransaction(c *gin.Context) {
	var tx ir.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Engine.Submit(c.Request.Context(), tx)
	if err != nil {
		var re *engine.RuntimeError
		if errors.As(err, &re) {
			c.JSON(runtimeStatus(re.Code), gin.H{"error": re.Message, "code": re.Code, "id": re.TxID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if !receipt.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, receipt)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	receipt, ok, err := h.Engine.Store().ReadReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ListTransactions pages through the receipt log in seq order.
func (h *Handler) ListTransactions(c *gin.Context) {
	after, err := queryInt(c, "after", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipts, err := h.Engine.Store().ListReceipts(c.Request.Context(), after, int(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipts)
}

func (h *Handler) GetPost(c *gin.Context) {
	addr, ok := pathAddress(c, "address")
	if !ok {
		return
	}
	post, err := h.Engine.Program().GetPost(c.Request.Context(), h.Engine.Store(), addr)
	if err != nil {
		writeProgramError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPostView(addr, post))
}

// GetProfile looks a profile up by its owner, not its address.
func (h *Handler) GetProfile(c *gin.Context) {
	owner, ok := pathAddress(c, "owner")
	if !ok {
		return
	}
	prog := h.Engine.Program()
	addr, err := prog.ProfileAddress(owner)
	if err != nil {
		writeProgramError(c, err)
		return
	}
	profile, err := prog.GetProfile(c.Request.Context(), h.Engine.Store(), addr)
	if err != nil {
		writeProgramError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileView(addr, profile))
}

func (h *Handler) GetAccount(c *gin.Context) {
	addr, ok := pathAddress(c, "address")
	if !ok {
		return
	}
	slot, found, err := h.Engine.Store().Load(c.Request.Context(), addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, NewAccountView(addr, slot))
}

func (h *Handler) GetBalance(c *gin.Context) {
	addr, ok := pathAddress(c, "address")
	if !ok {
		return
	}
	lamports, err := h.Engine.Store().Balance(c.Request.Context(), addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.String(), "lamports": lamports})
}

// PostAddress derives a post address from ?author=&nonce=.
func (h *Handler) PostAddress(c *gin.Context) {
	author, err := address.Parse(c.Query("author"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr, bump, err := address.PostAddress(h.Engine.ProgramID(), author, []byte(c.Query("nonce")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.String(), "bump": bump})
}

// ProfileAddress derives a profile address from ?owner=.
func (h *Handler) ProfileAddress(c *gin.Context) {
	owner, err := address.Parse(c.Query("owner"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr, bump, err := address.ProfileAddress(h.Engine.ProgramID(), owner)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.String(), "bump": bump})
}

func pathAddress(c *gin.Context, param string) (address.Address, bool) {
	addr, err := address.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return address.Address{}, false
	}
	return addr, true
}

func queryInt(c *gin.Context, key string, def int64) (int64, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeProgramError(c *gin.Context, err error) {
	pe, ok := program.AsError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusUnprocessableEntity
	if pe.Code == program.CodeNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": pe.Message, "code": pe.Code, "name": pe.Name, "detail": pe.Detail})
}

func runtimeStatus(code engine.RuntimeErrorCode) int {
	switch code {
	case engine.ErrCodeBadSignature:
		return http.StatusUnauthorized
	case engine.ErrCodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
