package scriptgen

const pythonTemplate = `#!/usr/bin/env python3
"""
{{.Title}}
Generated by MigroMat
Total Steps: {{len .Steps}}
"""
import os, json, requests
from datetime import datetime
from typing import Dict, Any

try:
    from dotenv import load_dotenv
    load_dotenv()
except ImportError:
    pass


class Config:
    AIRTABLE_API_KEY = os.getenv("AIRTABLE_API_KEY", "")
    AIRTABLE_BASE_ID = os.getenv("AIRTABLE_BASE_ID", "")
    OPENAI_API_KEY = os.getenv("OPENAI_API_KEY", "")
    SENDGRID_API_KEY = os.getenv("SENDGRID_API_KEY", "")


class Logger:
    def log(self, level, message):
        print(f"[{datetime.now().strftime('%H:%M:%S')}] [{level}] {message}")


logger = Logger()


class API:
    @staticmethod
    def airtable(method: str, table: str, data: Dict = None, record_id: str = None):
        url = f"https://api.airtable.com/v0/{Config.AIRTABLE_BASE_ID}/{table}"
        if record_id:
            url += f"/{record_id}"
        headers = {"Authorization": f"Bearer {Config.AIRTABLE_API_KEY}", "Content-Type": "application/json"}
        try:
            if method == "GET":
                r = requests.get(url, headers=headers)
            elif method == "POST":
                r = requests.post(url, headers=headers, json={"fields": data})
            else:
                r = requests.patch(url, headers=headers, json={"fields": data})
            r.raise_for_status()
            return r.json()
        except Exception as e:
            logger.log("ERROR", f"Airtable: {e}")
            return None

    @staticmethod
    def openai(prompt: str):
        url = "https://api.openai.com/v1/chat/completions"
        headers = {"Authorization": f"Bearer {Config.OPENAI_API_KEY}", "Content-Type": "application/json"}
        data = {"model": "gpt-3.5-turbo", "messages": [{"role": "user", "content": prompt}]}
        try:
            r = requests.post(url, headers=headers, json=data)
            r.raise_for_status()
            return r.json()["choices"][0]["message"]["content"]
        except Exception as e:
            logger.log("ERROR", f"OpenAI: {e}")
            return None

    @staticmethod
    def email(to: str, subject: str, body: str):
        url = "https://api.sendgrid.com/v3/mail/send"
        headers = {"Authorization": f"Bearer {Config.SENDGRID_API_KEY}", "Content-Type": "application/json"}
        data = {
            "personalizations": [{"to": [{"email": to}]}],
            "from": {"email": "noreply@example.com"},
            "subject": subject,
            "content": [{"type": "text/plain", "value": body}],
        }
        try:
            r = requests.post(url, headers=headers, json=data)
            r.raise_for_status()
            return True
        except Exception as e:
            logger.log("ERROR", f"Email: {e}")
            return False


api = API()


{{range .Steps}}def {{.Func}}(d: Dict[str, Any]) -> Dict[str, Any]:
    logger.log("INFO", {{.Label}})
{{if eq .Category "storage"}}    r = api.airtable("POST", "Table", {"Name": d.get("name", "Unknown")})
    if r:
        d["airtable_id"] = r.get("id")
{{else if eq .Category "ai"}}    r = api.openai(f"Process: {d}")
    if r:
        d["ai_response"] = r
{{else if eq .Category "email"}}    api.email(d.get("email", "test@example.com"), "Notification", "Done")
{{else}}    d[{{.DoneKey}}] = True
{{end}}    return d


{{end}}def run():
    logger.log("INFO", {{.StartLabel}})
    d = {"workflow": {{.QuotedName}}, "started": datetime.now().isoformat()}
    try:
{{range .Steps}}        d = {{.Func}}(d)
{{end}}        logger.log("INFO", "Done")
        return {"status": "success", "data": d}
    except Exception as e:
        logger.log("ERROR", f"Failed: {e}")
        return {"status": "failed", "error": str(e), "data": d}


if __name__ == "__main__":
    r = run()
    print(json.dumps(r, indent=2))
    with open("result.json", "w") as f:
        json.dump(r, f, indent=2)
    exit(0 if r.get("status") == "success" else 1)
`

const javascriptTemplate = `#!/usr/bin/env node
/**
 * {{.Title}}
 * Generated by MigroMat
 * Total Steps: {{len .Steps}}
 */
'use strict';

const fs = require('fs');

const config = {
  airtableApiKey: process.env.AIRTABLE_API_KEY || '',
  airtableBaseId: process.env.AIRTABLE_BASE_ID || '',
  openaiApiKey: process.env.OPENAI_API_KEY || '',
  sendgridApiKey: process.env.SENDGRID_API_KEY || '',
};

const logger = {
  log(level, message) {
    console.log(` + "`[${new Date().toISOString().slice(11, 19)}] [${level}] ${message}`" + `);
  },
};

function post(url, apiKey, body) {
  return fetch(url, {
    method: 'POST',
    headers: { Authorization: 'Bearer ' + apiKey, 'Content-Type': 'application/json' },
    body: JSON.stringify(body),
  })
    .then((r) => {
      if (!r.ok) throw new Error('HTTP ' + r.status);
      return r.text();
    })
    .then((text) => (text ? JSON.parse(text) : null));
}

const api = {
  airtable(table, fields) {
    const url = 'https://api.airtable.com/v0/' + config.airtableBaseId + '/' + table;
    return post(url, config.airtableApiKey, { fields: fields }).catch((e) => {
      logger.log('ERROR', 'Airtable: ' + e.message);
      return null;
    });
  },

  openai(prompt) {
    const body = { model: 'gpt-3.5-turbo', messages: [{ role: 'user', content: prompt }] };
    return post('https://api.openai.com/v1/chat/completions', config.openaiApiKey, body)
      .then((r) => r.choices[0].message.content)
      .catch((e) => {
        logger.log('ERROR', 'OpenAI: ' + e.message);
        return null;
      });
  },

  email(to, subject, body) {
    const payload = {
      personalizations: [{ to: [{ email: to }] }],
      from: { email: 'noreply@example.com' },
      subject: subject,
      content: [{ type: 'text/plain', value: body }],
    };
    return post('https://api.sendgrid.com/v3/mail/send', config.sendgridApiKey, payload)
      .then(() => true)
      .catch((e) => {
        logger.log('ERROR', 'Email: ' + e.message);
        return false;
      });
  },
};

{{range .Steps}}function {{.Func}}(d) {
  logger.log('INFO', {{.Label}});
{{if eq .Category "storage"}}  return api.airtable('Table', { Name: d.name || 'Unknown' }).then((r) => {
    if (r) d.airtable_id = r.id;
    return d;
  });
{{else if eq .Category "ai"}}  return api.openai('Process: ' + JSON.stringify(d)).then((r) => {
    if (r) d.ai_response = r;
    return d;
  });
{{else if eq .Category "email"}}  return api.email(d.email || 'test@example.com', 'Notification', 'Done').then(() => d);
{{else}}  d[{{.DoneKey}}] = true;
  return Promise.resolve(d);
{{end}}}

{{end}}function run() {
  logger.log('INFO', {{.StartLabel}});
  let d = { workflow: {{.QuotedName}}, started: new Date().toISOString() };
  const steps = [{{range $i, $s := .Steps}}{{if $i}}, {{end}}{{$s.Func}}{{end}}];
  return steps
    .reduce((chain, step) => chain.then((data) => {
      d = data;
      return step(data);
    }), Promise.resolve(d))
    .then((data) => {
      logger.log('INFO', 'Done');
      return { status: 'success', data: data };
    })
    .catch((e) => {
      logger.log('ERROR', 'Failed: ' + e.message);
      return { status: 'failed', error: String(e.message || e), data: d };
    });
}

run().then((r) => {
  console.log(JSON.stringify(r, null, 2));
  fs.writeFileSync('result.json', JSON.stringify(r, null, 2));
  process.exit(r.status === 'success' ? 0 : 1);
});
`
