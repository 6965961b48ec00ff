package evermem

import (
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// SearchParams are the query parameters of GET /memories/search.
// Zero values are omitted from the request.
type SearchParams struct {
	Query           string
	UserID          string
	GroupID         string
	RetrieveMethod  RetrieveMethod
	MemoryTypes     []string
	TopK            int
	Radius          float64
	StartTime       string
	EndTime         string
	IncludeMetadata *bool
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	setString(q, "query", p.Query)
	setString(q, "user_id", p.UserID)
	setString(q, "group_id", p.GroupID)
	setString(q, "retrieve_method", string(p.RetrieveMethod))
	setInt(q, "top_k", p.TopK)
	if p.Radius != 0 {
		q.Set("radius", strconv.FormatFloat(p.Radius, 'f', -1, 64))
	}
	setString(q, "start_time", p.StartTime)
	setString(q, "end_time", p.EndTime)
	if p.IncludeMetadata != nil {
		q.Set("include_metadata", strconv.FormatBool(*p.IncludeMetadata))
	}
	for _, mt := range p.MemoryTypes {
		q.Add("memory_types", mt)
	}
	return q
}

// StoreParams is the JSON body of POST /memories.
type StoreParams struct {
	MessageID  string   `json:"message_id"`
	CreateTime string   `json:"create_time"`
	Sender     string   `json:"sender"`
	SenderName string   `json:"sender_name,omitempty"`
	Content    string   `json:"content"`
	Role       string   `json:"role,omitempty"`
	GroupID    string   `json:"group_id,omitempty"`
	GroupName  string   `json:"group_name,omitempty"`
	ReferList  []string `json:"refer_list,omitempty"`
}

// FetchParams are the query parameters of GET /memories.
type FetchParams struct {
	UserID     string
	GroupID    string
	MemoryType string
	Limit      int
	Offset     int
	StartTime  string
	EndTime    string
}

func (p FetchParams) values() url.Values {
	q := url.Values{}
	setString(q, "user_id", p.UserID)
	setString(q, "group_id", p.GroupID)
	setString(q, "memory_type", p.MemoryType)
	setInt(q, "limit", p.Limit)
	setInt(q, "offset", p.Offset)
	setString(q, "start_time", p.StartTime)
	setString(q, "end_time", p.EndTime)
	return q
}

// DeleteParams are the query parameters of DELETE /memories.
type DeleteParams struct {
	EventID string
	UserID  string
	GroupID string
}

func (p DeleteParams) values() url.Values {
	q := url.Values{}
	setString(q, "event_id", p.EventID)
	setString(q, "user_id", p.UserID)
	setString(q, "group_id", p.GroupID)
	return q
}

// StoreAck summarizes a store response.
type StoreAck struct {
	Count  int64  `json:"count"`
	Status string `json:"status"`
}

// ParseStoreAck reads result.count and result.status_info from a store
// response. Missing fields default to 0 and "unknown".
func ParseStoreAck(data []byte) StoreAck {
	ack := StoreAck{Status: "unknown"}
	if !gjson.ValidBytes(data) {
		return ack
	}
	res := gjson.GetBytes(data, "result")
	ack.Count = res.Get("count").Int()
	if status := res.Get("status_info"); status.Exists() && status.Type != gjson.Null {
		ack.Status = status.String()
	}
	return ack
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v != 0 {
		q.Set(key, strconv.Itoa(v))
	}
}
