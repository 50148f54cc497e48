package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"stockpredictor/ml"
)

func main() {
	modelPath := flag.String("model", "./models/random_forest_model.json", "model artifact path")
	open := flag.Float64("open", 0, "open price")
	high := flag.Float64("high", 0, "high price")
	low := flag.Float64("low", 0, "low price")
	closePrice := flag.Float64("close", 0, "close price")
	volume := flag.Float64("volume", 0, "volume")
	flag.Parse()

	predictor, err := ml.Open(*modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	prediction, err := predictor.PredictFeatures(context.Background(), ml.FeatureRecord{
		Open:   *open,
		High:   *high,
		Low:    *low,
		Close:  *closePrice,
		Volume: *volume,
	})
	if err != nil {
		var mismatch *ml.SchemaMismatchError
		if errors.As(err, &mismatch) {
			log.Fatalf("model expects features %v: %v", predictor.Schema().Features, err)
		}
		log.Fatalf("prediction failed: %v", err)
	}

	fmt.Printf("Predicted Adjusted Close Price: %v\n", prediction)
}
