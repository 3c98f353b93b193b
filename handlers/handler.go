package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/huntcycle/huntcycle/pkg/logx"

	"go.uber.org/zap"
)

func encode(body any, w http.ResponseWriter) {
	response, err := json.Marshal(body)
	if err != nil {
		logx.Logger.Error(err, zap.String("desc", "could not marshal response"))
		return
	}

	_, err = w.Write(response)
	if err != nil {
		logx.Logger.Error(err, zap.String("desc", "could not write response"))
		return
	}
}
