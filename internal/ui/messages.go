package ui

import "time"

// Messages shown to the user.
const (
	MsgUploadFirst    = "Please upload a chart image first."
	MsgUploadBroken   = "The uploaded image could not be read. Please upload it again."
	MsgSelectPair     = "Please select a pair."
	MsgPickTimeframe  = "Please select a timeframe."
	MsgChartFailed    = "Failed to analyze the chart. The AI may be experiencing high traffic or could not interpret the image. Please try again with a clear screenshot."
	MsgForecastFailed = "Failed to generate future signals. The AI may be experiencing high traffic. Please try again."
	MsgTimeout        = "Analysis is taking longer than expected. The AI might be under heavy load. Please try again."
	MsgNoSignals      = "The AI could not identify any high-probability signals in the next 30 minutes based on the provided chart."
	MsgCopied         = "Copied to clipboard!"
	MsgCopyFailed     = "Failed to copy."
	MsgLoading        = "LR - CHART AI is analyzing..."
)

// CopyStatusDuration is how long a clipboard status stays visible.
const CopyStatusDuration = 2 * time.Second

// Disclaimer is printed in the footer of every page.
const (
	DisclaimerTitle = "DISCLAIMER: This is an AI-powered analysis tool and not financial advice."
	DisclaimerText  = "All trading involves risk. The signals provided by LR - CHART AI are based on algorithmic analysis of chart images and are for informational purposes only. Past performance is not indicative of future results. Accuracy is not guaranteed. Always do your own research and manage your risk."
)

// Button labels, idle and busy.
const (
	ButtonAnalyze        = "ANALYZE CHART"
	ButtonAnalyzing      = "ANALYZING..."
	ButtonForecast       = "GENERATE FUTURE SIGNALS"
	ButtonForecasting    = "GENERATING..."
	ButtonNextSignal     = "GENERATE NEXT SIGNAL"
	ButtonGenerating     = "GENERATING..."
	ButtonFutureList     = "GENERATE SIGNALS"
	ButtonGeneratingList = "GENERATING LIST..."
)

// Rules are printed under a generated future list.
var Rules = []string{
	"Only enter trades if the market conditions align with your own strategy. Do not trade blindly.",
	"Use proper money management. Do not risk more than 1-2% of your capital on a single trade.",
	"Avoid trading during high-impact news events.",
	"These signals are algorithmic predictions and not guaranteed. Trade at your own risk.",
}

// DefaultCommunityURL is the Telegram channel behind "Join on Telegram".
const DefaultCommunityURL = "https://t.me/+psHHfH3JLrk2Nzdk"
