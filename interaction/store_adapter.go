package interaction

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/tripkit/core"
)

// StoreLog 是基于 core.Store 接口的交互日志适配器。
// 交互记录序列化后按用户存储，可落在 Redis/内存等任意 Store 后端。
//
// 存储布局：
//   - 用户日志：{KeyPrefix}:user:{userID} -> JSON([]core.Interaction)
//   - 用户列表：{KeyPrefix}:users        -> JSON([]string)
type StoreLog struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	KeyPrefix string
}

// NewStoreLog 创建一个基于 core.Store 的交互日志。
func NewStoreLog(s core.Store, keyPrefix string) *StoreLog {
	if keyPrefix == "" {
		keyPrefix = "itx"
	}
	return &StoreLog{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

var _ Log = (*StoreLog)(nil)

func (l *StoreLog) userKey(userID string) string {
	return l.KeyPrefix + ":user:" + userID
}

func (l *StoreLog) usersKey() string {
	return l.KeyPrefix + ":users"
}

// GetUserInteractions 读取用户的全部交互记录。
func (l *StoreLog) GetUserInteractions(ctx context.Context, userID string) ([]*core.Interaction, error) {
	data, err := l.store.Get(ctx, l.userKey(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []*core.Interaction
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAllUsers 返回出现过交互的用户 ID（升序，保证遍历顺序确定）。
func (l *StoreLog) GetAllUsers(ctx context.Context) ([]string, error) {
	data, err := l.store.Get(ctx, l.usersKey())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var users []string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

// Record 追加一条交互记录（日志只追加，从不改写已有记录）。
func (l *StoreLog) Record(ctx context.Context, rec *core.Interaction) error {
	if rec == nil || rec.UserID == "" || rec.PlaceID == "" {
		return core.NewDomainError(core.ModuleInteraction, core.ErrorCodeInvalidInput,
			"interaction: user id and place id are required")
	}

	records, err := l.GetUserInteractions(ctx, rec.UserID)
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, l.userKey(rec.UserID), data); err != nil {
		return err
	}

	return l.addUser(ctx, rec.UserID)
}

func (l *StoreLog) addUser(ctx context.Context, userID string) error {
	users, err := l.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u == userID {
			return nil
		}
	}
	users = append(users, userID)
	sort.Strings(users)

	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, l.usersKey(), data)
}
