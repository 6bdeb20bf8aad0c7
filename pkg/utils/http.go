package utils

import (
	"fmt"
	"io"
	"net/http"
)

// MakeRequest executa um GET com o cliente informado e retorna o corpo da
// resposta. Qualquer status diferente de 200 é erro.
func MakeRequest(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("erro na requisição %s: status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return data, nil
}
