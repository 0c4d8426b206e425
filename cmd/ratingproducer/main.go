package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/exmosaul/queteparece/movie/pkg/model"
)

// Reads rating events from a JSON file and publishes them to the ratings
// topic, for seeding and load testing.
func main() {
	broker := flag.String("broker", "localhost:9092", "Kafka bootstrap server")
	topic := flag.String("topic", "ratings", "Destination topic")
	fileName := flag.String("file", "ratingsdata.json", "JSON file with rating events")
	flag.Parse()

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": *broker,
	})
	if err != nil {
		log.Fatalf("cannot create producer: %v", err)
	}
	defer producer.Close()

	go func() {
		for e := range producer.Events() {
			if ev, ok := e.(*kafka.Message); ok && ev.TopicPartition.Error != nil {
				log.Printf("delivery failed: %v", ev.TopicPartition)
			}
		}
	}()

	log.Printf("Reading rating events from %s", *fileName)
	events, err := readRatingEvents(*fileName)
	if err != nil {
		log.Fatalf("cannot read events: %v", err)
	}

	if err := produceRatingEvents(*topic, producer, events); err != nil {
		log.Fatalf("cannot produce events: %v", err)
	}

	if remaining := producer.Flush(10_000); remaining != 0 {
		log.Fatalf("still %d messages not delivered", remaining)
	}
	log.Printf("Produced %d events", len(events))
}

func readRatingEvents(fileName string) ([]model.RatingEvent, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []model.RatingEvent
	if err := json.NewDecoder(f).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

func produceRatingEvents(topic string, producer *kafka.Producer, events []model.RatingEvent) error {
	for _, re := range events {
		payload, err := json.Marshal(re)
		if err != nil {
			return err
		}
		if err := producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Value:          payload,
		}, nil); err != nil {
			return err
		}
	}
	return nil
}
