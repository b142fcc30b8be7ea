package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/zynexa/go-zynexa-server/types"
)

// handleError maps non 2xx responses of the rpc node to ledger errors
func handleError(response *resty.Response) error {
	if !response.IsError() {
		return nil
	}
	var body rpcResponse
	if err := json.Unmarshal(response.Body(), &body); err == nil && body.Error != nil {
		return body.Error
	}
	return fmt.Errorf("%w: rpc node returned http %d", types.ErrLedger, response.StatusCode())
}
