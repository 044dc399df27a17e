package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// CacheFields 描述一次缓存操作的目标文件与粒度。
func CacheFields(action, cachePath, groupBy string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"cache_path": cachePath,
		"group_by":   groupBy,
	}
}

// RequestFields 提供 HTTP 请求日志的通用字段。
func RequestFields(requestID, method, path string, status int) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     status,
	}
}
