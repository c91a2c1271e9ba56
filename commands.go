package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type CommandResult struct {
	OK    bool     `json:"ok"`
	Lines []string `json:"lines"`
}

func fail(format string, args ...any) CommandResult {
	return CommandResult{Lines: []string{fmt.Sprintf(format, args...)}}
}

func ok(lines ...string) CommandResult {
	return CommandResult{OK: true, Lines: lines}
}

// handleCommandLocked parses and runs one terminal command. Commands mutate
// state synchronously; anything with a delay goes through the staged run
// queue and surfaces on the feed.
func handleCommandLocked(s *Store, now time.Time, input string) CommandResult {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return fail("Type a command. `help` lists them.")
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	if s.Trace.GameOver && cmd != "status" && cmd != "help" && cmd != "reset" {
		return fail("SYSTEM LOCKED. The trace completed. `reset trace` to go back under, `reset game` to start over.")
	}
	if jailedLocked(s, now) && offensiveCommand(cmd) {
		remaining := s.Reputation.JailTimeEnd.Sub(now).Round(time.Minute)
		return fail("You are in detention for another %s. Offensive operations are off the table.", remaining)
	}

	switch cmd {
	case "help":
		return ok(helpLines()...)
	case "status":
		return statusCommandLocked(s, now)
	case "scan":
		return scanCommandLocked(s, now)
	case "connect":
		if len(args) != 1 {
			return fail("Usage: connect <ip>")
		}
		return connectCommandLocked(s, now, args[0])
	case "bruteforce", "ddos", "inject", "bypass":
		if len(args) != 1 {
			return fail("Usage: %s <ip>", cmd)
		}
		return toolCommandLocked(s, now, cmd, args[0])
	case "proxy":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fail("Usage: proxy on|off")
		}
		return proxyCommandLocked(s, now, args[0] == "on")
	case "logs":
		if len(args) != 2 || args[0] != "delete" {
			return fail("Usage: logs delete <ip>")
		}
		if err := deleteServerLogsLocked(s, now, args[1]); err != nil {
			return fail("%v", err)
		}
		return ok(fmt.Sprintf("Logs scrubbed. Trace down to %.1f%%.", s.Trace.Level))
	case "missions":
		return missionsCommandLocked(s)
	case "accept":
		if len(args) != 1 {
			return fail("Usage: accept <mission-id>")
		}
		m, err := acceptMissionLocked(s, now, args[0])
		if err != nil {
			return fail("%v", err)
		}
		lines := []string{fmt.Sprintf("Accepted: %s (%s, %d cc).", m.Name, m.Difficulty, m.Reward)}
		if m.TimeLimit > 0 {
			lines = append(lines, fmt.Sprintf("Clock is running: %d minutes.", m.TimeLimit))
		}
		return ok(lines...)
	case "complete":
		if len(args) != 1 {
			return fail("Usage: complete <mission-id>")
		}
		m, reward, err := completeMissionLocked(s, now, args[0])
		if err != nil {
			return fail("%v", err)
		}
		return ok(fmt.Sprintf("%s closed out. +%d cc, +%d skill points.", m.Name, reward, m.SkillPointReward))
	case "market":
		return marketCommandLocked(s, now)
	case "purchase":
		if len(args) != 1 {
			return fail("Usage: purchase <item-id>")
		}
		item, err := purchaseItemLocked(s, now, args[0])
		if err != nil {
			return fail("%v", err)
		}
		return ok(fmt.Sprintf("%s is yours. %s", item.Name, item.Effect.Description))
	case "inventory":
		return inventoryCommandLocked(s)
	case "skills":
		return skillsCommandLocked(s)
	case "skill":
		if len(args) != 2 || args[0] != "buy" {
			return fail("Usage: skill buy <skill-id>")
		}
		n, err := purchaseSkillLocked(s, now, args[1])
		if err != nil {
			return fail("%v", err)
		}
		return ok(fmt.Sprintf("Learned %s. %s", n.Name, n.Effect.Description))
	case "download":
		if len(args) != 1 {
			return fail("Usage: download <file>")
		}
		f, err := downloadFileLocked(s, now, args[0])
		if err != nil {
			return fail("%v", err)
		}
		return ok(fmt.Sprintf("Downloaded %s (%d KB) from %s.", f.Name, f.Size, f.SourceIP))
	case "history":
		if len(args) > 1 {
			return fail("Usage: history [<ip>]")
		}
		if len(args) == 1 {
			return nodeHistoryCommandLocked(s, args[0])
		}
		return historyCommandLocked(s)
	case "wallet":
		return walletCommandLocked(s)
	case "reset":
		if len(args) != 1 || (args[0] != "trace" && args[0] != "game") {
			return fail("Usage: reset trace|game")
		}
		if args[0] == "game" {
			resetStoreLocked(s, now)
			return ok("Full wipe complete. New grid, new you.")
		}
		if !s.Trace.GameOver {
			return fail("Nothing to reset; the trace has not completed.")
		}
		resetTraceLocked(s, now)
		return ok("Trace cleared. Penalties stand; watch the meter this time.")
	default:
		return fail("Unknown command %q. `help` lists what this terminal understands.", cmd)
	}
}

func offensiveCommand(cmd string) bool {
	switch cmd {
	case "scan", "connect", "bruteforce", "ddos", "inject", "bypass", "download":
		return true
	}
	return false
}

func helpLines() []string {
	return []string{
		"scan                 reveal nearby nodes",
		"connect <ip>         open a session on a cracked node",
		"bruteforce <ip>      crack credentials on a scanned node",
		"ddos <ip>            knock a node offline",
		"inject <ip>          plant a payload (needs a breached firewall)",
		"bypass <ip>          breach the firewall (needs a session)",
		"download <file>      exfiltrate from a bypassed node",
		"proxy on|off         dampen trace accumulation, 50 cc/min",
		"logs delete <ip>     scrub a breached node's logs, -15% trace",
		"missions / accept / complete    contract board",
		"market / purchase / inventory   black market",
		"skills / skill buy   skill tree",
		"wallet / history [<ip>] / status    bookkeeping",
		"reset trace|game     after capture, or start over",
	}
}

func statusCommandLocked(s *Store, now time.Time) CommandResult {
	band := rankFor(s.Reputation.Level)
	lines := []string{
		fmt.Sprintf("Trace: %.1f%%  Proxy: %v", s.Trace.Level, s.Trace.IsProxyActive),
		fmt.Sprintf("Wallet: %d cc  Rate: %.2f", s.Wallet.Balance, s.Market.CurrentRate),
		fmt.Sprintf("Reputation: %d (%s)", s.Reputation.Level, band.Title),
		fmt.Sprintf("Hacks: %d  Earned: %d cc  Files: %d", s.Player.HacksCompleted, s.Player.TotalEarned, len(s.Downloads)),
		fmt.Sprintf("Skill points: %d", s.Skills.SkillPoints),
	}
	if s.Grid.ConnectedIP != "" {
		lines = append(lines, fmt.Sprintf("Connected to %s", s.Grid.ConnectedIP))
	}
	if s.Trace.GameOver {
		lines = append(lines, "SYSTEM LOCKED: trace complete.")
	}
	if jailedLocked(s, now) {
		lines = append(lines, fmt.Sprintf("In detention until %s.", s.Reputation.JailTimeEnd.Format(time.Kitchen)))
	}
	return CommandResult{OK: true, Lines: lines}
}

func scanCommandLocked(s *Store, now time.Time) CommandResult {
	addTraceLocked(s, now, "scan")
	if s.Trace.GameOver {
		return fail("The scan lit you up. Trace complete.")
	}
	revealed := scanNetworkLocked(s)
	if len(revealed) == 0 {
		return ok("Sweep finished. Nothing new in range.")
	}
	lines := []string{fmt.Sprintf("Sweep finished. %d new node(s):", len(revealed))}
	for _, n := range revealed {
		lines = append(lines, fmt.Sprintf("  %s  security=%s", n.IP, n.Vulnerability))
	}
	addFeedEventLocked(s, FeedEvent{Type: "scan", Severity: 0, Text: fmt.Sprintf("Scan revealed %d node(s).", len(revealed)), At: now})
	return CommandResult{OK: true, Lines: lines}
}

func connectCommandLocked(s *Store, now time.Time, ip string) CommandResult {
	node := findNodeByIPLocked(s, ip)
	if node == nil {
		return fail("No known node at %s. Scan first.", ip)
	}
	if node.IsPlayerLocation {
		return fail("That is your own machine.")
	}
	if nodeDownLocked(node, now) {
		return fail("%s is offline right now.", ip)
	}
	if statusRank(node.Status) < statusRank(StatusBruteforce) {
		return fail("No valid credentials for %s. Bruteforce it first.", ip)
	}
	addTraceLocked(s, now, "connect")
	if s.Trace.GameOver {
		return fail("The handshake gave you away. Trace complete.")
	}
	advanceNodeStatusLocked(node, StatusConnected)
	s.Grid.ConnectedIP = ip
	addFeedEventLocked(s, FeedEvent{Type: "connect", Severity: 1, Text: fmt.Sprintf("Session opened on %s.", ip), At: now})
	return ok(fmt.Sprintf("Session opened on %s.", ip))
}

func toolCommandLocked(s *Store, now time.Time, toolID, ip string) CommandResult {
	run, err := executeToolLocked(s, now, toolID, ip)
	if err != nil {
		return fail("%v", err)
	}
	return ok(fmt.Sprintf("%s staged against %s. Watch the feed.", findToolLocked(s, toolID).Name, run.TargetIP))
}

func proxyCommandLocked(s *Store, now time.Time, on bool) CommandResult {
	if !on {
		if !s.Trace.IsProxyActive {
			return fail("No proxy is running.")
		}
		deactivateProxyLocked(s, now)
		return ok("Proxy chain dropped.")
	}
	if err := activateProxyLocked(s, now); err != nil {
		return fail("%v", err)
	}
	return ok(fmt.Sprintf("Proxy chain up. Trace gain cut to %.0f%%, billed %d cc/min.", proxyTraceMultiplier*100, proxyCostPerMinute))
}

func missionsCommandLocked(s *Store) CommandResult {
	lines := []string{"-- Contracts --"}
	for _, m := range visibleMissionsLocked(s) {
		lines = append(lines, fmt.Sprintf("[open]   %-20s %s  %d cc  (%s)", m.ID, m.Name, m.Reward, m.Difficulty))
	}
	for _, m := range s.Missions.Active {
		prog := s.Missions.Progress[m.ID]
		done := 0
		if prog != nil {
			for _, v := range prog.Requirements {
				if v {
					done++
				}
			}
		}
		lines = append(lines, fmt.Sprintf("[active] %-20s %s  %d/%d objectives", m.ID, m.Name, done, len(m.Requirements)))
	}
	for _, m := range s.Missions.Completed {
		tag := ""
		if !m.RewardClaimed {
			tag = "  (reward waiting)"
		}
		lines = append(lines, fmt.Sprintf("[done]   %-20s %s%s", m.ID, m.Name, tag))
	}
	if len(lines) == 1 {
		lines = append(lines, "The board is empty.")
	}
	return CommandResult{OK: true, Lines: lines}
}

func marketCommandLocked(s *Store, now time.Time) CommandResult {
	if marketBannedLocked(s, now) {
		return fail("The vendors have gone quiet on you.")
	}
	lines := []string{fmt.Sprintf("-- Black Market --  rate %.2f", s.Market.CurrentRate)}
	for _, it := range s.BlackMarket {
		if it.Owned {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-20s %6d cc  %s", it.ID, effectiveItemPriceLocked(s, it, now), it.Name))
	}
	return CommandResult{OK: true, Lines: lines}
}

func inventoryCommandLocked(s *Store) CommandResult {
	if len(s.Inventory) == 0 {
		return ok("You own nothing but your wits.")
	}
	lines := []string{"-- Inventory --"}
	for _, it := range s.Inventory {
		lines = append(lines, fmt.Sprintf("%-20s %s", it.ID, it.Effect.Description))
	}
	return CommandResult{OK: true, Lines: lines}
}

func skillsCommandLocked(s *Store) CommandResult {
	lines := []string{fmt.Sprintf("-- Skill Tree --  %d sp available", s.Skills.SkillPoints)}
	byCategory := map[string][]*SkillNode{}
	var cats []string
	for _, n := range s.Skills.Nodes {
		if len(byCategory[n.Category]) == 0 {
			cats = append(cats, n.Category)
		}
		byCategory[n.Category] = append(byCategory[n.Category], n)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		lines = append(lines, fmt.Sprintf("[%s]", cat))
		for _, n := range byCategory[cat] {
			state := "locked"
			if n.Purchased {
				state = "learned"
			} else if n.Unlocked {
				state = fmt.Sprintf("%d sp", n.Cost)
			}
			lines = append(lines, fmt.Sprintf("  %-20s %-8s %s", n.ID, state, n.Name))
		}
	}
	return CommandResult{OK: true, Lines: lines}
}

func historyCommandLocked(s *Store) CommandResult {
	attempts, successes := totalHackAttempts(s.Grid.Nodes)
	lines := []string{fmt.Sprintf("-- Hack Record --  %d attempts, %d hits", attempts, successes)}
	stats := hackStatsByTool(s.Grid.Nodes)
	var toolIDs []string
	for id := range stats {
		toolIDs = append(toolIDs, id)
	}
	sort.Strings(toolIDs)
	for _, id := range toolIDs {
		st := stats[id]
		rate := 0.0
		if st.Attempts > 0 {
			rate = float64(st.Successes) / float64(st.Attempts) * 100
		}
		lines = append(lines, fmt.Sprintf("%-12s %3d/%-3d  %5.1f%%", id, st.Successes, st.Attempts, rate))
	}
	if len(s.Downloads) > 0 {
		lines = append(lines, "-- Downloads --")
		for _, f := range s.Downloads {
			lines = append(lines, fmt.Sprintf("%-24s %6d KB  from %s", f.Name, f.Size, f.SourceIP))
		}
	}
	if len(lines) == 1 {
		lines = append(lines, "Nothing on record yet.")
	}
	return CommandResult{OK: true, Lines: lines}
}

func nodeHistoryCommandLocked(s *Store, ip string) CommandResult {
	n := findNodeByIPLocked(s, ip)
	if n == nil {
		return fail("No known node at %s.", ip)
	}
	if len(n.HackHistory) == 0 {
		return ok(fmt.Sprintf("No attempts recorded against %s.", ip))
	}
	lines := []string{fmt.Sprintf("-- %s --  %s security, status %s", n.IP, n.Vulnerability, n.Status)}
	for _, a := range n.HackHistory {
		outcome := "miss"
		if a.Success {
			outcome = "hit"
		}
		lines = append(lines, fmt.Sprintf("%s  %-12s %s", a.Timestamp.Format("15:04:05"), a.ToolName, outcome))
	}
	return CommandResult{OK: true, Lines: lines}
}

func walletCommandLocked(s *Store) CommandResult {
	lines := []string{fmt.Sprintf("Balance: %d cc", s.Wallet.Balance)}
	txs := s.Wallet.Transactions
	if len(txs) > 10 {
		txs = txs[:10]
	}
	for _, tx := range txs {
		sign := "+"
		if tx.Type == TxSpent || tx.Type == TxMarketLoss {
			sign = "-"
		}
		lines = append(lines, fmt.Sprintf("%s%-6d %-12s %s", sign, tx.Amount, tx.Type, tx.Description))
	}
	return CommandResult{OK: true, Lines: lines}
}
