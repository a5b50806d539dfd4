package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/guard"
	"github.com/rthefinder/USDG/internal/launchpad"
	"github.com/rthefinder/USDG/internal/stats"
	"github.com/rthefinder/USDG/internal/storage"
	"github.com/rthefinder/USDG/internal/verify"
)

const defaultListLimit = 50

type createLaunchRequest struct {
	Creator   string              `json:"creator" binding:"required"`
	TokenMint string              `json:"token_mint" binding:"required"`
	Config    domain.LaunchConfig `json:"config" binding:"required"`
}

type callerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

type purchaseRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

type liquidityRequest struct {
	Caller   string `json:"caller" binding:"required"`
	LPMint   string `json:"lp_mint" binding:"required"`
	LPAmount uint64 `json:"lp_amount" binding:"required"`
}

type launchResponse struct {
	LaunchID         string              `json:"launch_id"`
	Creator          string              `json:"creator"`
	TokenMint        string              `json:"token_mint"`
	Config           domain.LaunchConfig `json:"config"`
	Phase            domain.Phase        `json:"phase"`
	CreatedAt        int64               `json:"created_at"`
	LaunchedAt       *int64              `json:"launched_at,omitempty"`
	FinalizedAt      *int64              `json:"finalized_at,omitempty"`
	TotalPurchased   uint64              `json:"total_purchased"`
	ParticipantCount uint64              `json:"participant_count"`
}

type participantResponse struct {
	LaunchID       string `json:"launch_id"`
	Wallet         string `json:"wallet"`
	TotalPurchased uint64 `json:"total_purchased"`
	PurchaseCount  uint32 `json:"purchase_count"`
	LastPurchaseAt int64  `json:"last_purchase_at"`
}

type liquidityResponse struct {
	LaunchID    string `json:"launch_id"`
	LPMint      string `json:"lp_mint"`
	LPAmount    uint64 `json:"lp_amount"`
	CreatedAt   int64  `json:"created_at"`
	LockedUntil *int64 `json:"locked_until,omitempty"`
}

func toLaunchResponse(l *domain.Launch) launchResponse {
	return launchResponse{
		LaunchID:         l.LaunchID,
		Creator:          l.Creator,
		TokenMint:        l.TokenMint,
		Config:           l.Config,
		Phase:            l.Phase,
		CreatedAt:        l.CreatedAt,
		LaunchedAt:       l.LaunchedAt,
		FinalizedAt:      l.FinalizedAt,
		TotalPurchased:   l.TotalPurchased,
		ParticipantCount: l.ParticipantCount,
	}
}

func toParticipantResponse(p *domain.Participant) participantResponse {
	return participantResponse{
		LaunchID:       p.LaunchID,
		Wallet:         p.Wallet,
		TotalPurchased: p.TotalPurchased,
		PurchaseCount:  p.PurchaseCount,
		LastPurchaseAt: p.LastPurchaseAt,
	}
}

func toLiquidityResponse(r *domain.LiquidityRecord) liquidityResponse {
	return liquidityResponse{
		LaunchID:    r.LaunchID,
		LPMint:      r.LPMint,
		LPAmount:    r.LPAmount,
		CreatedAt:   r.CreatedAt,
		LockedUntil: r.LockedUntil,
	}
}

func (s *Server) createLaunch(c *gin.Context) {
	var req createLaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !domain.ValidAddress(req.Creator) || !domain.ValidAddress(req.TokenMint) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator and token_mint must be base58 32-byte addresses"})
		return
	}

	launch, err := s.svc.CreateLaunch(c.Request.Context(), req.Creator, req.TokenMint, req.Config)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLaunchResponse(launch))
}

func (s *Server) listLaunches(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	launches, err := s.svc.ListLaunches(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]launchResponse, 0, len(launches))
	for _, l := range launches {
		out = append(out, toLaunchResponse(l))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getLaunch(c *gin.Context) {
	launch, err := s.svc.GetLaunch(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLaunchResponse(launch))
}

func (s *Server) getLaunchByMint(c *gin.Context) {
	launch, err := s.svc.GetLaunchByMint(c.Request.Context(), c.Param("mint"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLaunchResponse(launch))
}

func (s *Server) revokeAuthorities(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	launch, err := s.svc.RevokeAuthorities(c.Request.Context(), req.Caller, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLaunchResponse(launch))
}

func (s *Server) enableTrading(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	launch, err := s.svc.EnableTrading(c.Request.Context(), req.Caller, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLaunchResponse(launch))
}

func (s *Server) purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Purchasing wallets must be real key pairs, not program-derived
	// addresses.
	if onCurve, err := domain.OnCurve(req.Wallet); err != nil || !onCurve {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet must be an on-curve base58 32-byte address"})
		return
	}

	participant, err := s.svc.Purchase(c.Request.Context(), c.Param("id"), req.Wallet, req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toParticipantResponse(participant))
}

func (s *Server) registerLiquidity(c *gin.Context) {
	var req liquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.svc.RegisterLiquidity(c.Request.Context(), req.Caller, c.Param("id"), req.LPMint, req.LPAmount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLiquidityResponse(rec))
}

func (s *Server) finalize(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	launch, err := s.svc.Finalize(c.Request.Context(), req.Caller, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLaunchResponse(launch))
}

func (s *Server) listParticipants(c *gin.Context) {
	participants, err := s.svc.GetParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listLiquidity(c *gin.Context) {
	records, err := s.svc.GetLiquidity(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]liquidityResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toLiquidityResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.events.GetByLaunch(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) listPurchases(c *gin.Context) {
	events, err := s.events.GetPurchases(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) getStats(c *gin.Context) {
	launchID := c.Param("id")

	launch, err := s.svc.GetLaunch(c.Request.Context(), launchID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	purchases, err := s.purchaseHistory(c, launchID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result := stats.Compute(launchID, purchases, launch.Config.Distribution.TotalSupply, s.clock.Now())
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"launch_id": launchID, "total_participants": 0})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getVerification(c *gin.Context) {
	launchID := c.Param("id")

	launch, err := s.svc.GetLaunch(c.Request.Context(), launchID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	purchases, err := s.purchaseHistory(c, launchID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	authorities := verify.Authorities{}
	if s.checker != nil {
		state, err := s.checker.GetMintAuthorities(c.Request.Context(), launch.TokenMint)
		if err != nil {
			s.log.WithError(err).WithField("launch_id", launchID).Warn("authority check failed")
		} else {
			authorities = verify.Authorities{
				MintAuthority:   state.MintAuthority,
				FreezeAuthority: state.FreezeAuthority,
				Verified:        true,
				CheckedAt:       s.clock.Now(),
			}
		}
	}

	report := verify.GenerateReport(launchID, launch.Config, purchases, authorities, "api", s.clock.Now())
	c.JSON(http.StatusOK, report)
}

// purchaseHistory converts the PURCHASE_EXECUTED event history into
// verifier purchases.
func (s *Server) purchaseHistory(c *gin.Context, launchID string) ([]verify.Purchase, error) {
	events, err := s.events.GetPurchases(c.Request.Context(), launchID)
	if err != nil {
		return nil, err
	}

	purchases := make([]verify.Purchase, 0, len(events))
	for _, e := range events {
		purchases = append(purchases, verify.Purchase{
			Wallet:    e.Wallet,
			Amount:    e.Amount,
			Timestamp: e.Timestamp,
		})
	}
	return purchases, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, launchpad.ErrLaunchNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, launchpad.ErrLaunchExists):
		status = http.StatusConflict
	case errors.Is(err, guard.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, guard.ErrInvalidConfig),
		errors.Is(err, guard.ErrFixedSupplyRequired),
		errors.Is(err, guard.ErrMintAuthorityMustRevoke),
		errors.Is(err, guard.ErrFreezeAuthorityMustRevoke),
		errors.Is(err, guard.ErrInvalidAmount),
		errors.Is(err, guard.ErrInvalidWallet):
		status = http.StatusBadRequest
	case errors.Is(err, guard.ErrTradingNotEnabled),
		errors.Is(err, guard.ErrTradingAlreadyOpen),
		errors.Is(err, guard.ErrLaunchFinalized),
		errors.Is(err, guard.ErrAuthoritiesNotRevoked),
		errors.Is(err, guard.ErrFairLaunchDelayNotElapsed):
		status = http.StatusConflict
	case errors.Is(err, guard.ErrMaxBuyExceeded),
		errors.Is(err, guard.ErrConcentrationExceeded),
		errors.Is(err, guard.ErrPurchaseTooSoon):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("internal error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
