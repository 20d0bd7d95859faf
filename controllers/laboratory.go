package controllers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/montelibero/stellarlab/db"
	"github.com/montelibero/stellarlab/handlers"
	"github.com/montelibero/stellarlab/models"
)

// TransactionAssembler builds a sealed envelope from a draft.
type TransactionAssembler interface {
	Assemble(ctx context.Context, draft *models.TransactionDraft) (string, error)
}

// EnvelopeDecoder parses a base64 envelope into wire JSON.
type EnvelopeDecoder interface {
	Decode(envelope string) (*models.DecodedTransaction, error)
}

// LedgerDirectory serves the account lookups the form autocompletes from.
type LedgerDirectory interface {
	CurrentSequence(ctx context.Context, account string) (int64, error)
	AccountAssets(ctx context.Context, account string) ([]handlers.AccountBalance, error)
	AccountData(ctx context.Context, account string) (map[string]string, error)
	AccountOffers(ctx context.Context, account string) ([]handlers.AccountOffer, error)
	ClaimableBalances(ctx context.Context, claimant string) ([]handlers.ClaimableBalanceEntry, error)
	Paths(ctx context.Context, selling, buying models.AssetSpecifier, amount string) ([]handlers.PathOption, error)
}

type LaboratoryController struct {
	db        *sql.DB
	directory LedgerDirectory
	assembler TransactionAssembler
	decoder   EnvelopeDecoder
	apiKey    string
	logger    *logrus.Entry
}

func NewLaboratoryController(dbConn *sql.DB, directory LedgerDirectory, assembler TransactionAssembler, decoder EnvelopeDecoder, apiKey string, logger *logrus.Entry) *LaboratoryController {
	return &LaboratoryController{
		db:        dbConn,
		directory: directory,
		assembler: assembler,
		decoder:   decoder,
		apiKey:    apiKey,
		logger:    logger,
	}
}

func (lc *LaboratoryController) RegisterRoutes(r *gin.Engine) {
	store := persistence.NewInMemoryStore(time.Minute)

	r.GET("/health", lc.HealthCheck)

	lab := r.Group("/lab")
	{
		lab.POST("/build_xdr", lc.BuildXDR)
		lab.POST("/xdr_to_json", lc.XDRToJSON)
		lab.POST("/import_xdr", lc.ImportXDR)

		lab.GET("/sequence/:account", lc.GetSequence)
		lab.GET("/assets/:account", lc.GetAssets)
		lab.GET("/data/:account", lc.GetData)
		lab.GET("/offers/:account", lc.GetOffers)
		lab.GET("/claimable_balances/:account", lc.GetClaimableBalances)
		lab.GET("/path/:selling/:buying/:amount", lc.GetPaths)
		lab.GET("/trade_cost/:amount/:price/:direction/:counter", lc.GetTradeCost)

		lab.GET("/mtl_accounts", cache.CachePage(store, time.Minute, lc.dictGetter(db.DictAccounts)))
		lab.GET("/mtl_assets", cache.CachePage(store, time.Minute, lc.dictGetter(db.DictAssets)))
		lab.GET("/mtl_pools", cache.CachePage(store, time.Minute, lc.dictGetter(db.DictPools)))
		lab.POST("/mtl_accounts", lc.dictSetter(db.DictAccounts))
		lab.POST("/mtl_assets", lc.dictSetter(db.DictAssets))
		lab.POST("/mtl_pools", lc.dictSetter(db.DictPools))
	}
}

func (lc *LaboratoryController) HealthCheck(c *gin.Context) {
	if err := lc.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// BuildXDR assembles a draft into an envelope. Validation failures are part
// of the form workflow, so they come back with status 200 and an error body
// the form shows inline.
func (lc *LaboratoryController) BuildXDR(c *gin.Context) {
	var draft models.TransactionDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	envelope, err := lc.assembler.Assemble(c.Request.Context(), &draft)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": validationErr.Error(), "validation": validationErr})
			return
		}
		lc.logger.WithError(err).Error("building envelope failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to build transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "xdr": envelope})
}

type envelopeRequest struct {
	XDR string `json:"xdr" binding:"required"`
}

func (lc *LaboratoryController) XDRToJSON(c *gin.Context) {
	var req envelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	decoded, err := lc.decoder.Decode(req.XDR)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Failed to parse envelope"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": decoded})
}

// ImportXDR maps an envelope back onto a form draft, skipping operations
// the form cannot edit.
func (lc *LaboratoryController) ImportXDR(c *gin.Context) {
	var req envelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	decoded, err := lc.decoder.Decode(req.XDR)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Failed to parse envelope"})
		return
	}
	draft, imported, skipped := handlers.DecodeDraft(decoded)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     draft,
		"imported": imported,
		"skipped":  skipped,
	})
}

// GetSequence returns the next usable sequence number. A failed lookup
// (fresh or unfunded account) answers "0", the auto-assign sentinel the
// form sends back on build.
func (lc *LaboratoryController) GetSequence(c *gin.Context) {
	current, err := lc.directory.CurrentSequence(c.Request.Context(), c.Param("account"))
	if err != nil {
		lc.logger.WithError(err).WithField("account", c.Param("account")).Warn("sequence lookup failed")
		c.JSON(http.StatusOK, gin.H{"success": true, "sequence": "0"})
		return
	}
	next, err := handlers.NextSequence(strconv.FormatInt(current, 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to compute sequence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sequence": next})
}

func (lc *LaboratoryController) GetAssets(c *gin.Context) {
	balances, err := lc.directory.AccountAssets(c.Request.Context(), c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch balances"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": balances})
}

// GetData lists the account's data entries as "name=value" labels mapped to
// the entry name, plus the standing suggestions the forms always offer. The
// suggestions survive a failed account lookup.
func (lc *LaboratoryController) GetData(c *gin.Context) {
	options := map[string]string{}
	data, err := lc.directory.AccountData(c.Request.Context(), c.Param("account"))
	if err != nil {
		lc.logger.WithError(err).WithField("account", c.Param("account")).Warn("data lookup failed")
	}
	for name, value := range data {
		options[name+"="+value] = name
	}
	options["mtl_delegate if you want delegate your mtl votes"] = "mtl_delegate"
	options["mtl_donate if you want donate"] = "mtl_donate"
	c.JSON(http.StatusOK, gin.H{"success": true, "data": options})
}

func (lc *LaboratoryController) GetOffers(c *gin.Context) {
	offers, err := lc.directory.AccountOffers(c.Request.Context(), c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch offers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": offers})
}

func (lc *LaboratoryController) GetClaimableBalances(c *gin.Context) {
	entries, err := lc.directory.ClaimableBalances(c.Request.Context(), c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch claimable balances"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

func (lc *LaboratoryController) GetPaths(c *gin.Context) {
	selling, err := models.ParseAssetSpecifier(c.Param("selling"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid selling asset"})
		return
	}
	buying, err := models.ParseAssetSpecifier(c.Param("buying"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid buying asset"})
		return
	}
	paths, err := lc.directory.Paths(c.Request.Context(), selling, buying, c.Param("amount"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch paths"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": paths})
}

// GetTradeCost captions what an offer does to the balance: the counter
// amount bought or sold, or the deletion notice for a zero amount.
func (lc *LaboratoryController) GetTradeCost(c *gin.Context) {
	amount, err := handlers.ValidateField(c.Param("amount"), handlers.KindFloatTrade)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid amount"})
		return
	}
	price, err := handlers.ValidateField(c.Param("price"), handlers.KindFloatTrade)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid price"})
		return
	}
	a, _ := strconv.ParseFloat(amount, 64)
	p, _ := strconv.ParseFloat(price, 64)
	buying := c.Param("direction") == "buy"
	c.JSON(http.StatusOK, gin.H{"success": true, "cost": handlers.TradeCost(a, p, buying, c.Param("counter"))})
}

// DictOption is one dictionary entry rendered for a form dropdown.
type DictOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (lc *LaboratoryController) dictGetter(dict db.DictType) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := db.GetDict(lc.db, dict)
		if err != nil {
			lc.logger.WithError(err).WithField("dict", string(dict)).Error("dict fetch failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch dictionary"})
			return
		}
		options := make([]DictOption, 0, len(entries)+1)
		if dict == db.DictAssets {
			options = append(options, DictOption{Value: models.NativeAssetLabel, Label: models.NativeAssetLabel})
		}
		for _, entry := range entries {
			options = append(options, DictOption{Value: entry.Key, Label: dictLabel(dict, entry)})
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": options})
	}
}

func (lc *LaboratoryController) dictSetter(dict db.DictType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+lc.apiKey || lc.apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		var entries []db.DictEntry
		if err := c.ShouldBindJSON(&entries); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}
		if err := db.SaveDict(lc.db, dict, entries); err != nil {
			lc.logger.WithError(err).WithField("dict", string(dict)).Error("dict save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save dictionary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries)})
	}
}

// dictLabel renders the dropdown label: the curated name plus a shortened
// key so two entries with the same name stay distinguishable.
func dictLabel(dict db.DictType, entry db.DictEntry) string {
	switch dict {
	case db.DictAssets:
		return entry.Name + " (" + entry.Key + ")"
	default:
		return entry.Name + " (" + shortKey(entry.Key) + ")"
	}
}

func shortKey(key string) string {
	if len(key) <= 10 {
		return key
	}
	return key[:4] + ".." + key[len(key)-4:]
}
