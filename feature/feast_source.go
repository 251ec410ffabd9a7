package feature

import (
	"context"
	"fmt"
	"strconv"

	feastsdk "github.com/feast-dev/feast/sdk/go"
)

// FeastUserFeatures 是基于官方 Feast Go SDK 的 UserFeatureSource 实现。
//
// Feast 是一个开源 Feature Store，这里只使用它的在线特征读取能力：
// 按 user_id 实体拉取用户侧特征（user_age / user_gender / user_activity_level）。
// 抽取器对在线源的失败完全容忍，画像快照永远是兜底。
type FeastUserFeatures struct {
	client  *feastsdk.GrpcClient
	project string

	// EntityKey 是实体字段名，默认 "user_id"。
	EntityKey string

	// Features 是要拉取的特征全名列表，例如 "user_stats:user_age"。
	Features []string
}

// NewFeastUserFeatures 创建一个 Feast 在线特征源。
// port 为 0 时使用默认 gRPC 端口 6565。
func NewFeastUserFeatures(host string, port int, project string, features []string) (*FeastUserFeatures, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastUserFeatures{
		client:    client,
		project:   project,
		EntityKey: "user_id",
		Features:  features,
	}, nil
}

func (f *FeastUserFeatures) Name() string { return "feast" }

// UserFeatures 拉取单个用户的在线特征。
// 返回的 key 取特征全名冒号后的短名，与 Feat* 常量对齐。
func (f *FeastUserFeatures) UserFeatures(ctx context.Context, userID int64) (map[string]float64, error) {
	if len(f.Features) == 0 {
		return map[string]float64{}, nil
	}

	entityKey := f.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: f.Features,
		Entities: []feastsdk.Row{
			{entityKey: feastsdk.Int64Val(userID)},
		},
		Project: f.project,
	}

	resp, err := f.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	out := make(map[string]float64, len(f.Features))
	for _, full := range f.Features {
		short := shortFeatureName(full)
		val, ok := rows[0][full]
		if !ok {
			if val, ok = rows[0][short]; !ok {
				continue
			}
		}
		if f64, ok := toFloat(val); ok {
			out[short] = f64
		}
	}
	return out, nil
}

// Close 释放客户端资源。
// 官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理。
func (f *FeastUserFeatures) Close() error {
	return nil
}

// shortFeatureName 取 "view:name" 的 name 部分；无冒号时原样返回。
func shortFeatureName(full string) string {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == ':' {
			return full[i+1:]
		}
	}
	return full
}

// toFloat 把 SDK 返回的特征值转为 float64。
// SDK 的 Value 是 protobuf 包装类型，常见数值形态逐一尝试，
// 兜底走字符串化再解析（与 protobuf Value 的文本形态兼容）。
func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case interface {
		GetDoubleVal() float64
		GetFloatVal() float32
		GetInt64Val() int64
		GetInt32Val() int32
	}:
		// protobuf Value 的 oneof 未命中时 getter 返回零值，
		// 依次尝试即可覆盖全部数值形态（全零时结果同样为 0）
		if d := v.GetDoubleVal(); d != 0 {
			return d, true
		}
		if f := v.GetFloatVal(); f != 0 {
			return float64(f), true
		}
		if i := v.GetInt64Val(); i != 0 {
			return float64(i), true
		}
		return float64(v.GetInt32Val()), true
	default:
		if f, err := strconv.ParseFloat(fmt.Sprintf("%v", val), 64); err == nil {
			return f, true
		}
		return 0, false
	}
}
