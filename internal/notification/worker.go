package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"clinic-logistics-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering booking confirmations.
// Delivery is fire-and-forget: failures are logged and never reach the
// booking caller.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case appointmentID := <-wp.jobs:
			log.Printf("Worker %d processing appointment %s", id, appointmentID)
			wp.sendConfirmation(ctx, appointmentID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// AppointmentBooked queues a confirmation for the given appointment. It never
// blocks the booking path; if the queue is full the notification is dropped
// with a log line.
func (wp *WorkerPool) AppointmentBooked(appointmentID string) {
	select {
	case wp.jobs <- appointmentID:
	default:
		log.Printf("Notification queue full, dropping confirmation for appointment %s", appointmentID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// sendConfirmation fetches the requester's subscriptions and delivers the
// booking summary for a given appointment.
func (wp *WorkerPool) sendConfirmation(ctx context.Context, appointmentID string) {
	var appt model.Appointment
	if err := wp.db.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error; err != nil {
		log.Printf("Error fetching appointment %s: %v", appointmentID, err)
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("requester_id = ?", appt.RequesterID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for requester %s: %v", appt.RequesterID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	resourceLabel := appt.ResourceID
	var resource model.ExamResource
	if err := wp.db.WithContext(ctx).
		Select("name").
		First(&resource, "id = ?", appt.ResourceID).Error; err != nil {
		log.Printf("Error fetching resource %s: %v", appt.ResourceID, err)
	} else if resource.Name != "" {
		resourceLabel = resource.Name
	}

	log.Printf("Sending %d confirmations for appointment %s", len(subscriptions), appointmentID)

	message := fmt.Sprintf("Your %s appointment on %s is confirmed.",
		resourceLabel, appt.StartTime.Format("Mon, 2 Jan at 15:04"))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
