package crew

import (
	"fmt"
	"strings"

	"stx-trader/internal/domain"
	"stx-trader/internal/tools"
)

const (
	AnalystRoleName = "STX Market Analyst"
	BalanceRoleName = "STX Balance Fetcher"
)

const analystBackstory = `You are a seasoned cryptocurrency analyst specializing in Stacks (STX) tokens. Your expertise lies in interpreting short-term price movements and market trends to make informed trading recommendations.`

const balanceBackstory = `You are a specialized agent responsible for retrieving accurate balance information for STX wallets. Your role is crucial in providing up-to-date financial data for decision-making.`

const analystTask = `Analyze the current STX market conditions based on the following factors:
- Market Cap
- Volume (24h)
- Volume Change (24h Percentage)
- Volume/Market Cap ratio
- Percentage changes over 1 hour, 24 hours, 7 days, and 30 days.
- Market Cap Dominance
- Fully Diluted Market Cap.

Provide a recommendation (buy, sell, or hold) based on these metrics.`

const (
	analystExpectedOutput = "A market analysis report with buy/sell/hold recommendation based on the provided metrics. End with a final line of the form 'Recommendation: BUY', 'Recommendation: SELL' or 'Recommendation: HOLD'."
	balanceExpectedOutput = "The current STX balance and associated token holdings."
)

// AnalystGoal embeds every market metric into the analyst's goal. Missing
// metrics are left blank.
func AnalystGoal(s domain.MarketSnapshot) string {
	m := s.Map()
	var sb strings.Builder
	sb.WriteString("Based on the current balance of the given user's address,\n")
	fmt.Fprintf(&sb, "Analyze %s(%s) current market data and recommend a trading action based on the following metrics:\n", m["name"], m["symbol"])
	fmt.Fprintf(&sb, "- Current Stacks Price= %s usd (Current price of Stacks coin)\n", m["stx_price"])
	fmt.Fprintf(&sb, "- Market Cap= %s (The total market value of a cryptocurrency's circulating supply. It indicates the free-float capitalization in the stock market.)\n", m["market_cap"])
	fmt.Fprintf(&sb, "- Volume (24h)= %s (The amount of STX traded in the last 24 hours.)\n", m["volume_24h"])
	sb.WriteString("- Volume Change (24h Percentage): Indicator of liquidity.\n")
	fmt.Fprintf(&sb, "- Volume/Market Cap (24h)= %s (Indicates liquidity. A higher ratio means the cryptocurrency is more liquid and easier to trade.)\n", m["volume_change_24h"])
	fmt.Fprintf(&sb, "- Percentage Change (1h)= %s (The percentage change in STX price over the past hour.)\n", m["percent_change_1h"])
	fmt.Fprintf(&sb, "- Percentage Change (24h)= %s (The percentage change in STX price over the past 24 hours.)\n", m["percent_change_24h"])
	fmt.Fprintf(&sb, "- Percentage Change (7d)= %s (The percentage change in STX price over the past 7 days.)\n", m["percent_change_7d"])
	fmt.Fprintf(&sb, "- Percentage Change (30d)= %s (The percentage change in STX price over the past 30 days.)\n", m["percent_change_30d"])
	fmt.Fprintf(&sb, "- Market Cap Dominance: %s (Indicates the relative size and influence of STX in the broader cryptocurrency market.)\n", m["market_cap_dominance"])
	fmt.Fprintf(&sb, "- Fully Diluted Market Cap: %s (The total market capitalization if all STX tokens were issued.)\n", m["fully_diluted_market_cap"])
	sb.WriteString("\nUse this data to recommend a buy, sell, or hold (no action) action.")
	return sb.String()
}

func AnalystBackstory() string { return analystBackstory }

func AnalystTaskDescription() string { return analystTask }

func BalanceGoal() string {
	return "Fetch and report the current balance of STX tokens for a given address."
}

func BalanceBackstory() string { return balanceBackstory }

func BalanceTaskDescription(address string) string {
	return fmt.Sprintf("Fetch and report the current balance of STX tokens for the user's address:\n\n**Address:** %s", address)
}

// Plan returns the run's tasks in execution order: market analysis first,
// then the balance lookup.
func Plan(s domain.MarketSnapshot, address string, verbose bool) []Task {
	analyst := Role{
		Name:      AnalystRoleName,
		Goal:      AnalystGoal(s),
		Backstory: AnalystBackstory(),
		Verbose:   verbose,
	}
	balance := Role{
		Name:      BalanceRoleName,
		Goal:      BalanceGoal(),
		Backstory: BalanceBackstory(),
		Verbose:   verbose,
		Tools:     []string{tools.BalanceToolName},
	}
	return []Task{
		{
			Kind:           domain.TaskKindMarketRecommendation,
			Role:           analyst,
			Description:    AnalystTaskDescription(),
			ExpectedOutput: analystExpectedOutput,
		},
		{
			Kind:           domain.TaskKindBalanceReport,
			Role:           balance,
			Description:    BalanceTaskDescription(address),
			ExpectedOutput: balanceExpectedOutput,
		},
	}
}

func systemPrompt(r Role) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. %s\n\nYour personal goal is: %s", r.Name, r.Backstory, r.Goal)
	if len(r.Tools) > 0 {
		fmt.Fprintf(&sb, "\n\nYou have access to the following tools: %s. Use them to get real data; never invent figures.", strings.Join(r.Tools, ", "))
	}
	return sb.String()
}

func taskPrompt(t Task, previous []domain.TaskResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current Task: %s\n\nThis is the expected criteria for your final answer: %s", t.Description, t.ExpectedOutput)
	if len(previous) > 0 {
		sb.WriteString("\n\nThis is the context you're working with:\n")
		for _, p := range previous {
			fmt.Fprintf(&sb, "\n[%s]\n%s\n", p.Role, strings.TrimSpace(p.Output))
		}
	}
	return sb.String()
}
