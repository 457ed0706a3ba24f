package webserver

import (
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stake-plus/castlotto/src/neynar"
	"github.com/stake-plus/castlotto/src/lottery"
	"go.uber.org/zap"
)

// fetchError is the only failure detail shown to clients.
const fetchError = "Unable to fetch data from Neynar."

type Players struct {
	runner    Runner
	snapshots SnapshotWriter
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

func NewPlayers(runner Runner, snapshots SnapshotWriter, logger *zap.Logger) Players {
	return Players{
		runner:    runner,
		snapshots: snapshots,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

type playersResponse struct {
	RunID             string              `json:"runId"`
	Cutoff            string              `json:"cutoff"`
	TotalReplies      int                 `json:"totalReplies"`
	SkippedDuplicates int                 `json:"skippedDuplicates"`
	TotalPlayers      int                 `json:"totalPlayers"`
	IsFull            bool                `json:"isFull"`
	Players           []lottery.Claim     `json:"players"`
	Rejected          []lottery.Rejection `json:"rejected"`
}

func (p Players) run(c *gin.Context) (*lottery.Result, bool) {
	res, err := p.runner.Run(c.Request.Context())
	if err != nil {
		p.logger.Error("pipeline failed",
			zap.Error(err),
			zap.Bool("rate_limited", neynar.IsRateLimit(err)))
		return nil, false
	}
	return res, true
}

// List returns the accepted players and the rejection log as JSON.
func (p Players) List(c *gin.Context) {
	res, ok := p.run(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchError})
		return
	}
	c.JSON(http.StatusOK, p.response(res))
}

// Page renders the 100-slot HTML table.
func (p Players) Page(c *gin.Context) {
	res, ok := p.run(c)
	if !ok {
		c.HTML(http.StatusInternalServerError, errorTemplate, gin.H{"Error": fetchError})
		return
	}
	c.HTML(http.StatusOK, pageTemplate, p.pageData(res))
}

// Snapshot recomputes the result and replaces the snapshot file with it.
func (p Players) Snapshot(c *gin.Context) {
	if p.snapshots == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshots are not configured"})
		return
	}
	res, ok := p.run(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fetchError})
		return
	}
	players := res.Assignment.Claims()
	if err := p.snapshots.Write(players); err != nil {
		p.logger.Error("snapshot write failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to write snapshot."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": res.RunID, "written": len(players)})
}

func (p Players) response(res *lottery.Result) playersResponse {
	players := res.Assignment.Claims()
	for i := range players {
		players[i] = p.clean(players[i])
	}
	if players == nil {
		players = []lottery.Claim{}
	}
	rejected := make([]lottery.Rejection, len(res.Rejected))
	for i, r := range res.Rejected {
		r.Username = p.plain(r.Username)
		rejected[i] = r
	}
	return playersResponse{
		RunID:             res.RunID,
		Cutoff:            res.Cutoff.Format(time.RFC3339),
		TotalReplies:      res.TotalReplies,
		SkippedDuplicates: res.SkippedDuplicates,
		TotalPlayers:      res.TotalPlayers(),
		IsFull:            res.IsFull(),
		Players:           players,
		Rejected:          rejected,
	}
}

func (p Players) clean(claim lottery.Claim) lottery.Claim {
	claim.Username = p.plain(claim.Username)
	claim.Comment = p.plain(claim.Comment)
	return claim
}

// plain strips markup but keeps text as written; bluemonday escapes its
// output and JSON needs the raw characters.
func (p Players) plain(s string) string {
	return html.UnescapeString(p.sanitizer.Sanitize(s))
}

type slotRow struct {
	Number    string
	Taken     bool
	Username  string
	FID       int64
	Timestamp string
}

func (p Players) pageData(res *lottery.Result) gin.H {
	rows := make([]slotRow, 0, lottery.SlotCount)
	for _, slot := range res.Assignment.Slots() {
		row := slotRow{Number: slot.Number}
		if slot.Claim != nil {
			row.Taken = true
			row.Username = slot.Claim.Username
			row.FID = slot.Claim.FID
			row.Timestamp = slot.Claim.Timestamp.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return gin.H{
		"TotalReplies":      res.TotalReplies,
		"SkippedDuplicates": res.SkippedDuplicates,
		"TotalPlayers":      res.TotalPlayers(),
		"IsFull":            res.IsFull(),
		"Cutoff":            res.Cutoff.Format("2006-01-02 15:04 MST"),
		"Rejected":          len(res.Rejected),
		"Rows":              rows,
	}
}
