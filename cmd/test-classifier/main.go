package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"insafe-lab/internal/config"
	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/pkg/logger"
)

type sample struct {
	ct   models.ContentType
	text string
}

func main() {
	log := logger.NewDevelopment()

	url := os.Getenv("INSAFE_CLASSIFIER_URL")
	if url == "" {
		url = "http://localhost:8001"
	}

	fmt.Println("===========================================")
	fmt.Println("Zero-shot Classifier Smoke Test")
	fmt.Println("===========================================")
	fmt.Printf("Classifier: %s\n", url)
	fmt.Println()

	classifier := services.NewClassifier(config.ClassifierConfig{
		Enabled: true,
		URL:     url,
		Timeout: 10 * time.Second,
	}, nil, log)
	detector := ai.NewDetector(ai.DefaultDetectorConfig(), log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	samples := []sample{
		{models.ContentTypeSMS, "Congratulations! You've won ₹25 lakh in KBC lottery. Click link to claim: bit.ly/kbc-winner"},
		{models.ContentTypeSMS, "Your OTP for login is 482913. Do not share it with anyone."},
		{models.ContentTypeURL, "https://sbi.co.in"},
		{models.ContentTypeURL, "http://sbi-kyc-update.xyz/verify"},
		{models.ContentTypeCall, "This is CBI officer, your Aadhaar is linked to money laundering, pay now to avoid arrest"},
		{models.ContentTypeQR, "upi://pay?pa=scammer@paytm&pn=FakeStore&am=100"},
	}

	reachable := 0
	for i, s := range samples {
		fmt.Printf("🔍 Sample %d (%s)\n", i+1, s.ct)
		fmt.Println("-------------------------------------------")
		fmt.Printf("   %s\n", s.text)

		sig := classifier.Signal(ctx, s.text, s.ct)
		if !sig.Available {
			fmt.Println("❌ Classifier unavailable, scoring with rules only")
		} else {
			reachable++
			fmt.Printf("✅ Classifier confidence: %d\n", sig.Confidence)
		}

		res, err := detector.ScoreContent(s.text, s.ct, sig)
		if err != nil {
			fmt.Printf("❌ Scoring failed: %v\n", err)
			fmt.Println()
			continue
		}
		fmt.Printf("   - Verdict: %s (%d)\n", res.Verdict, res.Confidence)
		for _, f := range res.RiskFactors {
			fmt.Printf("   - ⚠️  %s\n", f)
		}
		fmt.Println()
	}

	fmt.Println("===========================================")
	fmt.Printf("Test completed! Classifier answered %d/%d samples\n", reachable, len(samples))
	fmt.Println("===========================================")

	if reachable == 0 {
		os.Exit(1)
	}
}
