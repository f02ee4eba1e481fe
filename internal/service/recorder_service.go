package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/model"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/contract"
)

// IRecorderPublisher hands analytics events to the in-process queue. Publish
// never blocks the chat path on database or geo lookups.
type IRecorderPublisher interface {
	Publish(ctx context.Context, payload dto.RecordChatMessage) error
}

type IRecorderService interface {
	Consume(ctx context.Context) error
}

type recorderPublisher struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewRecorderPublisher(topicName string, pubSub *gochannel.GoChannel) IRecorderPublisher {
	return &recorderPublisher{pubSub: pubSub, topicName: topicName}
}

func (p *recorderPublisher) Publish(_ context.Context, payload dto.RecordChatMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	return p.pubSub.Publish(p.topicName, msg)
}

type recorderService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	repo      contract.IAnalyticsRepository
	geo       IGeoService
	ipSalt    string
	log       logger.ILogger
}

func NewRecorderService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo contract.IAnalyticsRepository,
	geo IGeoService,
	ipSalt string,
	log logger.ILogger,
) IRecorderService {
	return &recorderService{
		pubSub:    pubSub,
		topicName: topicName,
		repo:      repo,
		geo:       geo,
		ipSalt:    ipSalt,
		log:       log,
	}
}

func (rs *recorderService) Consume(ctx context.Context) error {
	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (rs *recorderService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RecordChatMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		rs.log.Error("Recorder", "failed to unmarshal analytics event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	session := rs.buildSession(ctx, payload)
	if err := rs.repo.UpsertSession(ctx, session); err != nil {
		rs.log.Error("Recorder", "failed to upsert session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		// Analytics writes are best-effort: Ack rather than loop forever.
		msg.Ack()
		return
	}

	for _, row := range rs.buildMessages(payload) {
		if err := rs.repo.InsertMessage(ctx, row); err != nil {
			rs.log.Error("Recorder", "failed to insert message row", map[string]interface{}{
				"session_id": payload.SessionId,
				"role":       row.Role,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}

func (rs *recorderService) buildSession(ctx context.Context, payload dto.RecordChatMessage) *model.AnalyticsSession {
	session := &model.AnalyticsSession{
		SessionId: payload.SessionId,
		IpHash:    HashIP(payload.ClientIp, rs.ipSalt),
		IpPlain:   payload.ClientIp,
		UserAgent: payload.UserAgent,
	}
	if payload.Meta != nil {
		session.VisitorId = payload.Meta.VisitorId
		session.Locale = payload.Meta.Locale
		session.Timezone = payload.Meta.Timezone
		session.Referrer = payload.Meta.Referrer
		session.PageUrl = payload.Meta.PageUrl
		session.Dnt = payload.Meta.Dnt
		session.NetDownlink = payload.Meta.NetDownlink
		session.NetEffType = payload.Meta.NetEffType
		session.NetRtt = payload.Meta.NetRtt
	}

	if info, err := rs.geo.Lookup(ctx, payload.ClientIp); err != nil {
		rs.log.Debug("Recorder", "geo lookup failed", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
	} else if info != nil {
		session.GeoCity = info.City
		session.GeoRegion = info.Region
		session.GeoCountry = info.Country
		session.GeoLat = info.Lat
		session.GeoLon = info.Lon
		session.GeoIsp = info.Isp
	}

	return session
}

// buildMessages shapes one exchange as two rows, one per role. message_len
// counts the row's own content; generation metadata lands on the assistant
// row only.
func (rs *recorderService) buildMessages(payload dto.RecordChatMessage) []*model.AnalyticsMessage {
	sources, err := json.Marshal(payload.RetrievedSources)
	if err != nil {
		sources = []byte("[]")
	}

	return []*model.AnalyticsMessage{
		{
			SessionId:  payload.SessionId,
			Role:       constant.ChatRoleUser,
			Content:    payload.UserMessage,
			Timestamp:  payload.UserTimestamp,
			MessageLen: len([]rune(payload.UserMessage)),
		},
		{
			SessionId:        payload.SessionId,
			Role:             constant.ChatRoleAssistant,
			Content:          payload.AssistantMessage,
			Timestamp:        payload.AssistantTimestamp,
			MessageLen:       len([]rune(payload.AssistantMessage)),
			ResponseLen:      len([]rune(payload.AssistantMessage)),
			ModelName:        payload.ModelName,
			ServerDurationMs: payload.ServerDurationMs,
			MissingInfo:      payload.MissingInfo,
			RetrievedSources: sources,
			ContextChars:     payload.ContextChars,
		},
	}
}

// HashIP returns the salted SHA-256 digest of an address.
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + ip))
	return hex.EncodeToString(sum[:])
}
