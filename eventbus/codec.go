package eventbus

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/beacon/xerrors"
)

// ErrUnsupportedCodec 不支持的编码器类型
var ErrUnsupportedCodec = xerrors.New("eventbus: unsupported codec")

// Codec 定义事件负载的编解码接口
type Codec interface {
	Marshal(value any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// jsonCodec JSON 编码器
type jsonCodec struct{}

func (jsonCodec) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonCodec) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

// msgpackCodec MessagePack 编码器
//
// MessagePack 比 JSON 序列化更快、数据体积更小，适合高频事件场景。
type msgpackCodec struct{}

func (msgpackCodec) Marshal(value any) ([]byte, error) {
	return msgpack.Marshal(value)
}

func (msgpackCodec) Unmarshal(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}

// NewCodec 创建编码器
//
// 支持的编码器类型:
//   - "json": 标准库 JSON 编码，兼容性最好（默认）
//   - "msgpack": MessagePack 二进制编码，性能更优
func NewCodec(codecType string) (Codec, error) {
	switch codecType {
	case "json", "":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	default:
		return nil, ErrUnsupportedCodec
	}
}
