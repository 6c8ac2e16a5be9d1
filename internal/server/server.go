package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"revenue-ledger/internal/domain"
	"revenue-ledger/internal/service"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

type Server struct {
	ledgerService service.LedgerServiceInterface
	auditService  *service.AuditService
	db            *sql.DB
}

func NewServer(ledgerService service.LedgerServiceInterface, auditService *service.AuditService, db *sql.DB) *Server {
	return &Server{
		ledgerService: ledgerService,
		auditService:  auditService,
		db:            db,
	}
}

func (s *Server) HealthCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		log.WithField("error", err).Error("Health check failed: database is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection error",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) RecordTransaction(c echo.Context) error {
	var req domain.RecordTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	ctx := c.Request().Context()
	tx, err := s.ledgerService.RecordTransaction(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			// Already recorded is recoverable for retrying producers.
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "transaction already recorded",
				"id":    req.ID,
			})
		}
		log.WithError(err).Error("Failed to record transaction")
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, tx)
}

func (s *Server) GetTransaction(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "transaction ID is required",
		})
	}

	ctx := c.Request().Context()
	tx, err := s.ledgerService.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "transaction not found",
			})
		}
		log.WithError(err).WithField("transaction_id", id).Error("Failed to get transaction")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, tx)
}

func (s *Server) ListTransactions(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	ctx := c.Request().Context()
	transactions, err := s.ledgerService.ListTransactions(ctx, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list transactions")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

func (s *Server) PendingPayouts(c echo.Context) error {
	ctx := c.Request().Context()
	pending, err := s.ledgerService.PendingPayouts(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to read pending payouts")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	return c.JSON(http.StatusOK, pending)
}

func (s *Server) GetPolicy(c echo.Context) error {
	policy := s.ledgerService.Policy()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":        policy.Version(),
		"beneficiary":    policy.Beneficiary(),
		"infrastructure": policy.Infrastructure(),
		"operator":       policy.Operator(),
	})
}

func (s *Server) RunAudit(c echo.Context) error {
	ctx := c.Request().Context()
	report, err := s.auditService.RunAudit(ctx)
	if err != nil {
		log.WithError(err).Error("Audit run failed before producing a report")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "ledger snapshot unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pass":   report.Pass(),
		"report": report,
	})
}
