package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// QueryFields 提供读绑定的操作名/缓存键/命中状态字段，供数据层日志复用。
func QueryFields(op, key string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":    "query",
		"op":        op,
		"cache_key": key,
		"cache_hit": cacheHit,
	}
}

// MutationFields 提供写绑定的操作名与文档 ID 字段。
func MutationFields(op, docID string) logrus.Fields {
	return logrus.Fields{
		"action": "mutation",
		"op":     op,
		"doc_id": docID,
	}
}

// ForwardFields 提供网关转发日志所需的方法/路径/上游字段。
func ForwardFields(method, path, upstream string, status int) logrus.Fields {
	return logrus.Fields{
		"action":          "forward",
		"method":          method,
		"path":            path,
		"upstream":        upstream,
		"upstream_status": status,
	}
}
